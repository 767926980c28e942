package reservation

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrSeatConflict       = errors.New("one or more seats are already reserved for this time slot")
	ErrHolderConflict     = errors.New("holder already has a reservation at this time")
	ErrNotFound           = errors.New("reservation not found")
	ErrMemberNotFound     = errors.New("member not found or inactive")
	ErrNotAllowed         = errors.New("not allowed")
	ErrGracePeriodExpired = errors.New("cancellation grace period has expired")
)
