package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateGroup inserts all rows in one transaction; a conflict on any row
	// leaves nothing committed.
	CreateGroup(ctx context.Context, rows []Reservation) ([]Reservation, error)

	GetByID(ctx context.Context, id int) (*Reservation, error)

	// GetDetails returns one row joined with facility and holder details.
	GetDetails(ctx context.Context, id int) (*ReservationWithDetails, error)

	// FindOverlaps returns committed rows for the facility whose intervals
	// intersect [start, end) on any of the given seats. Rows belonging to
	// excludeGroup are ignored (uuid.Nil excludes nothing).
	FindOverlaps(ctx context.Context, facilityID int, seats []int, start, end time.Time, excludeGroup uuid.UUID) ([]Reservation, error)

	// FindHolderOverlap returns any row of the holder, in any facility, whose
	// interval intersects [start, end), or nil.
	FindHolderOverlap(ctx context.Context, holderID int, start, end time.Time, excludeGroup uuid.UUID) (*Reservation, error)

	UpdateRow(ctx context.Context, id, seatNumber int, start, end time.Time) (*Reservation, error)

	DeleteGroup(ctx context.Context, groupID uuid.UUID) (int64, error)
	DeleteByID(ctx context.Context, id int) error

	ListByHolder(ctx context.Context, holderID int) ([]ReservationWithDetails, error)
	ListAll(ctx context.Context) ([]ReservationWithDetails, error)
	ListForFacilityDate(ctx context.Context, facilityID int, dayStart, dayEnd time.Time) ([]Reservation, error)
}
