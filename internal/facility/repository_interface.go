package facility

import "context"

type Repository interface {
	GetAllFacilities(ctx context.Context) ([]Facility, error)
	GetFacilityByID(ctx context.Context, id int) (*Facility, error)
	GetSeats(ctx context.Context, facilityID int) ([]int, error)
	SeatsExist(ctx context.Context, facilityID int, seats []int) (bool, error)
}
