package reservation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"labslot/internal/auth"
	"labslot/internal/facility"
	"labslot/internal/metrics"
	"labslot/internal/reporter"
	"labslot/internal/user"
)

// Reporter is the fire-and-forget error sink; failures inside it never abort
// the booking operation that triggered the report.
type Reporter interface {
	Log(ctx context.Context, err error, reportCtx, severity string)
}

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) ([]Reservation, error)
	CreateOnBehalf(ctx context.Context, actor auth.Actor, req CreateOnBehalfRequest) ([]Reservation, error)
	Get(ctx context.Context, actor auth.Actor, reservationID int) (*ReservationWithDetails, error)
	Edit(ctx context.Context, actor auth.Actor, reservationID int, req EditRequest) (*Reservation, error)
	Delete(ctx context.Context, actor auth.Actor, reservationID int, now time.Time) (int64, error)
	RemoveByStaff(ctx context.Context, actor auth.Actor, reservationID int, now time.Time) (*Reservation, error)
	ListForHolder(ctx context.Context, holderID int) ([]ReservationWithDetails, error)
	ListAll(ctx context.Context, actor auth.Actor) ([]ReservationWithDetails, error)
}

type service struct {
	repo         Repository
	facilityRepo facility.Repository
	userRepo     user.Repository
	reporter     Reporter
	gracePeriod  time.Duration
}

func NewService(
	repo Repository,
	facilityRepo facility.Repository,
	userRepo user.Repository,
	rep Reporter,
	gracePeriod time.Duration,
) Service {
	return &service{
		repo:         repo,
		facilityRepo: facilityRepo,
		userRepo:     userRepo,
		reporter:     rep,
		gracePeriod:  gracePeriod,
	}
}

// normalizeSeats deduplicates and orders the requested seat numbers.
func normalizeSeats(seats []int) ([]int, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("%w: at least one seat is required", ErrInvalidInput)
	}

	seen := make(map[int]struct{}, len(seats))
	normalized := make([]int, 0, len(seats))
	for _, seat := range seats {
		if seat <= 0 {
			return nil, fmt.Errorf("%w: invalid seat number %d", ErrInvalidInput, seat)
		}
		if _, dup := seen[seat]; dup {
			continue
		}
		seen[seat] = struct{}{}
		normalized = append(normalized, seat)
	}
	sort.Ints(normalized)
	return normalized, nil
}

// validateSlot resolves date+time into the half-open [start, end) interval,
// enforcing the booking window and slot grid.
func (s *service) validateSlot(date, slotTime string) (start, end time.Time, err error) {
	if err := facility.ValidateDate(date, time.Now()); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	start, err = facility.ParseSlotStart(date, slotTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return start, start.Add(facility.SlotDuration), nil
}

// checkConflicts runs the two-phase check: seat overlap within the facility,
// then the stricter holder-wide overlap across all facilities. Any hit fails
// the whole group; partial grants are never issued.
func (s *service) checkConflicts(ctx context.Context, facilityID int, seats []int, holderID int, start, end time.Time, excludeGroup uuid.UUID) error {
	overlaps, err := s.repo.FindOverlaps(ctx, facilityID, seats, start, end, excludeGroup)
	if err != nil {
		s.reporter.Log(ctx, err, "reservation.checkConflicts", reporter.SeverityHigh)
		return err
	}
	if len(overlaps) > 0 {
		metrics.RecordConflict("seat")
		s.reporter.Log(ctx, ErrSeatConflict, fmt.Sprintf("facility=%d seats=%v", facilityID, seats), reporter.SeverityLow)
		return ErrSeatConflict
	}

	holderOverlap, err := s.repo.FindHolderOverlap(ctx, holderID, start, end, excludeGroup)
	if err != nil {
		s.reporter.Log(ctx, err, "reservation.checkConflicts", reporter.SeverityHigh)
		return err
	}
	if holderOverlap != nil {
		metrics.RecordConflict("holder")
		s.reporter.Log(ctx, ErrHolderConflict, fmt.Sprintf("holder=%d overlap=%d", holderID, holderOverlap.ID), reporter.SeverityLow)
		return ErrHolderConflict
	}

	return nil
}

func (s *service) createGroup(ctx context.Context, holderID, facilityID int, seats []int, start, end time.Time, anonymous bool) ([]Reservation, error) {
	groupID := uuid.New()
	rows := make([]Reservation, 0, len(seats))
	for _, seat := range seats {
		rows = append(rows, Reservation{
			GroupID:    groupID,
			HolderID:   holderID,
			FacilityID: facilityID,
			SeatNumber: seat,
			StartTime:  start,
			EndTime:    end,
			Anonymous:  anonymous,
		})
	}

	created, err := s.repo.CreateGroup(ctx, rows)
	if err != nil {
		if err == ErrSeatConflict {
			// Lost a commit-time race; same outcome as the pre-check.
			metrics.RecordConflict("seat")
			s.reporter.Log(ctx, ErrSeatConflict, fmt.Sprintf("facility=%d seats=%v", facilityID, seats), reporter.SeverityLow)
			return nil, err
		}
		s.reporter.Log(ctx, err, "reservation.createGroup", reporter.SeverityHigh)
		return nil, err
	}

	return created, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) ([]Reservation, error) {
	if actor.IsStaff() {
		// Staff book through the on-behalf operation.
		s.reporter.Log(ctx, ErrNotAllowed, fmt.Sprintf("staff %d used member create", actor.ID), reporter.SeverityMedium)
		return nil, ErrNotAllowed
	}

	if _, err := s.facilityRepo.GetFacilityByID(ctx, req.FacilityID); err != nil {
		if errors.Is(err, facility.ErrFacilityNotFound) {
			return nil, fmt.Errorf("%w: unknown facility", ErrNotFound)
		}
		s.reporter.Log(ctx, err, "reservation.Create", reporter.SeverityHigh)
		return nil, err
	}

	seats, err := normalizeSeats(req.Seats)
	if err != nil {
		return nil, err
	}

	ok, err := s.facilityRepo.SeatsExist(ctx, req.FacilityID, seats)
	if err != nil {
		s.reporter.Log(ctx, err, "reservation.Create", reporter.SeverityHigh)
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: unknown seat for facility", ErrInvalidInput)
	}

	start, end, err := s.validateSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, req.FacilityID, seats, actor.ID, start, end, uuid.Nil); err != nil {
		return nil, err
	}

	created, err := s.createGroup(ctx, actor.ID, req.FacilityID, seats, start, end, req.Anonymous)
	if err != nil {
		return nil, err
	}

	metrics.RecordReservation("member")
	return created, nil
}

func (s *service) CreateOnBehalf(ctx context.Context, actor auth.Actor, req CreateOnBehalfRequest) ([]Reservation, error) {
	if !actor.IsStaff() {
		s.reporter.Log(ctx, ErrNotAllowed, fmt.Sprintf("non-staff %d used on-behalf create", actor.ID), reporter.SeverityMedium)
		return nil, ErrNotAllowed
	}

	member, err := s.userRepo.FindActiveMemberByEmail(ctx, req.MemberEmail)
	if err != nil {
		if err == user.ErrUserNotFound {
			s.reporter.Log(ctx, ErrMemberNotFound, "email="+req.MemberEmail, reporter.SeverityLow)
			return nil, ErrMemberNotFound
		}
		s.reporter.Log(ctx, err, "reservation.CreateOnBehalf", reporter.SeverityHigh)
		return nil, err
	}

	if _, err := s.facilityRepo.GetFacilityByID(ctx, req.FacilityID); err != nil {
		if errors.Is(err, facility.ErrFacilityNotFound) {
			return nil, fmt.Errorf("%w: unknown facility", ErrNotFound)
		}
		s.reporter.Log(ctx, err, "reservation.CreateOnBehalf", reporter.SeverityHigh)
		return nil, err
	}

	seats, err := normalizeSeats(req.Seats)
	if err != nil {
		return nil, err
	}

	ok, err := s.facilityRepo.SeatsExist(ctx, req.FacilityID, seats)
	if err != nil {
		s.reporter.Log(ctx, err, "reservation.CreateOnBehalf", reporter.SeverityHigh)
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: unknown seat for facility", ErrInvalidInput)
	}

	start, end, err := s.validateSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, req.FacilityID, seats, member.ID, start, end, uuid.Nil); err != nil {
		return nil, err
	}

	// Staff-initiated bookings are never anonymous.
	created, err := s.createGroup(ctx, member.ID, req.FacilityID, seats, start, end, false)
	if err != nil {
		return nil, err
	}

	metrics.RecordReservation("staff")
	return created, nil
}

// Get returns one reservation with facility and holder details. Only the
// holder and staff may view it.
func (s *service) Get(ctx context.Context, actor auth.Actor, reservationID int) (*ReservationWithDetails, error) {
	row, err := s.repo.GetDetails(ctx, reservationID)
	if err != nil {
		if err != ErrNotFound {
			s.reporter.Log(ctx, err, "reservation.Get", reporter.SeverityHigh)
		}
		return nil, err
	}

	if row.HolderID != actor.ID && !actor.IsStaff() {
		return nil, ErrNotAllowed
	}

	return row, nil
}

func (s *service) Edit(ctx context.Context, actor auth.Actor, reservationID int, req EditRequest) (*Reservation, error) {
	row, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if row.HolderID != actor.ID && !actor.IsStaff() {
		s.reporter.Log(ctx, ErrNotAllowed, fmt.Sprintf("actor %d edited reservation %d", actor.ID, reservationID), reporter.SeverityMedium)
		return nil, ErrNotAllowed
	}

	if req.SeatNumber <= 0 {
		return nil, fmt.Errorf("%w: invalid seat number %d", ErrInvalidInput, req.SeatNumber)
	}

	ok, err := s.facilityRepo.SeatsExist(ctx, row.FacilityID, []int{req.SeatNumber})
	if err != nil {
		s.reporter.Log(ctx, err, "reservation.Edit", reporter.SeverityHigh)
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: unknown seat for facility", ErrInvalidInput)
	}

	start, end, err := s.validateSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	// The moved row is re-validated exactly as on create, excluding its own
	// group from both checks so the group does not conflict with itself.
	if err := s.checkConflicts(ctx, row.FacilityID, []int{req.SeatNumber}, row.HolderID, start, end, row.GroupID); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateRow(ctx, reservationID, req.SeatNumber, start, end)
	if err != nil {
		if err == ErrSeatConflict {
			metrics.RecordConflict("seat")
			return nil, err
		}
		if err != ErrNotFound {
			s.reporter.Log(ctx, err, "reservation.Edit", reporter.SeverityHigh)
		}
		return nil, err
	}

	return updated, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, reservationID int, now time.Time) (int64, error) {
	row, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return 0, err
	}

	isHolder := row.HolderID == actor.ID
	if !isHolder {
		if !actor.IsStaff() {
			s.reporter.Log(ctx, ErrNotAllowed, fmt.Sprintf("actor %d deleted reservation %d", actor.ID, reservationID), reporter.SeverityMedium)
			return 0, ErrNotAllowed
		}
		// Staff may cancel someone else's booking only inside the grace
		// window [start, start+grace]; the holder is never time-bound.
		if now.Before(row.StartTime) {
			return 0, ErrNotAllowed
		}
		if now.After(row.StartTime.Add(s.gracePeriod)) {
			return 0, ErrGracePeriodExpired
		}
	}

	removed, err := s.repo.DeleteGroup(ctx, row.GroupID)
	if err != nil {
		if err != ErrNotFound {
			s.reporter.Log(ctx, err, "reservation.Delete", reporter.SeverityHigh)
		}
		return 0, err
	}

	metrics.RecordCancellation()
	return removed, nil
}

func (s *service) RemoveByStaff(ctx context.Context, actor auth.Actor, reservationID int, now time.Time) (*Reservation, error) {
	if !actor.IsStaff() {
		s.reporter.Log(ctx, ErrNotAllowed, fmt.Sprintf("non-staff %d used staff removal", actor.ID), reporter.SeverityMedium)
		return nil, ErrNotAllowed
	}

	row, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	// Gated purely on elapsed time since the slot started; removes only this
	// row, not the group.
	if now.Sub(row.StartTime) > s.gracePeriod {
		return nil, ErrGracePeriodExpired
	}

	if err := s.repo.DeleteByID(ctx, reservationID); err != nil {
		if err != ErrNotFound {
			s.reporter.Log(ctx, err, "reservation.RemoveByStaff", reporter.SeverityHigh)
		}
		return nil, err
	}

	metrics.RecordCancellation()
	return row, nil
}

func (s *service) ListForHolder(ctx context.Context, holderID int) ([]ReservationWithDetails, error) {
	return s.repo.ListByHolder(ctx, holderID)
}

func (s *service) ListAll(ctx context.Context, actor auth.Actor) ([]ReservationWithDetails, error) {
	if !actor.IsStaff() {
		return nil, ErrNotAllowed
	}
	return s.repo.ListAll(ctx)
}
