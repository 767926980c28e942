package facility

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetAllFacilities(ctx context.Context) ([]Facility, error) {
	query := `
		SELECT id, name, created_at
		FROM facilities
		ORDER BY name ASC
	`

	var facilities []Facility
	err := r.db.SelectContext(ctx, &facilities, query)
	if err != nil {
		return nil, err
	}

	return facilities, nil
}

func (r *repository) GetFacilityByID(ctx context.Context, id int) (*Facility, error) {
	query := `
		SELECT id, name, created_at
		FROM facilities
		WHERE id = $1
	`

	var facility Facility
	err := r.db.GetContext(ctx, &facility, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}

	return &facility, nil
}

func (r *repository) GetSeats(ctx context.Context, facilityID int) ([]int, error) {
	query := `
		SELECT seat_number
		FROM facility_seats
		WHERE facility_id = $1
		ORDER BY seat_number ASC
	`

	var seats []int
	err := r.db.SelectContext(ctx, &seats, query, facilityID)
	if err != nil {
		return nil, err
	}

	return seats, nil
}

func (r *repository) SeatsExist(ctx context.Context, facilityID int, seats []int) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM facility_seats
		WHERE facility_id = $1 AND seat_number = ANY($2)
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, facilityID, pq.Array(seats))
	if err != nil {
		return false, err
	}

	return count == len(seats), nil
}
