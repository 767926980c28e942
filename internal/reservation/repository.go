package reservation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code raised by the
// (facility_id, seat_number, start_time) unique index when two transactions
// race for the same seat and slot. The loser gets the same conflict error the
// pre-check would have produced.
const uniqueViolation = "23505"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (r *repository) CreateGroup(ctx context.Context, rows []Reservation) ([]Reservation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reservations (group_id, holder_id, facility_id, seat_number, start_time, end_time, anonymous)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, group_id, holder_id, facility_id, seat_number, start_time, end_time, anonymous, created_at
	`

	created := make([]Reservation, 0, len(rows))
	for _, row := range rows {
		var res Reservation
		err := tx.QueryRowxContext(ctx, query,
			row.GroupID, row.HolderID, row.FacilityID, row.SeatNumber,
			row.StartTime, row.EndTime, row.Anonymous,
		).StructScan(&res)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, ErrSeatConflict
			}
			return nil, err
		}
		created = append(created, res)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSeatConflict
		}
		return nil, err
	}

	return created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Reservation, error) {
	query := `
		SELECT id, group_id, holder_id, facility_id, seat_number, start_time, end_time, anonymous, created_at
		FROM reservations
		WHERE id = $1
	`

	var res Reservation
	err := r.db.GetContext(ctx, &res, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &res, nil
}

func (r *repository) GetDetails(ctx context.Context, id int) (*ReservationWithDetails, error) {
	query := `
		SELECT
			r.id, r.group_id, r.holder_id, r.facility_id, r.seat_number,
			r.start_time, r.end_time, r.anonymous, r.created_at,
			f.name AS facility_name,
			u.name AS holder_name,
			u.email AS holder_email
		FROM reservations r
		JOIN facilities f ON r.facility_id = f.id
		JOIN users u ON r.holder_id = u.id
		WHERE r.id = $1
	`

	var res ReservationWithDetails
	err := r.db.GetContext(ctx, &res, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &res, nil
}

func (r *repository) FindOverlaps(ctx context.Context, facilityID int, seats []int, start, end time.Time, excludeGroup uuid.UUID) ([]Reservation, error) {
	// Half-open intervals: touching endpoints do not conflict. No committed
	// row carries the zero uuid, so uuid.Nil excludes nothing.
	query := `
		SELECT id, group_id, holder_id, facility_id, seat_number, start_time, end_time, anonymous, created_at
		FROM reservations
		WHERE facility_id = $1
		  AND seat_number = ANY($2)
		  AND start_time < $3
		  AND end_time > $4
		  AND group_id <> $5
		ORDER BY seat_number ASC
	`

	var overlaps []Reservation
	err := r.db.SelectContext(ctx, &overlaps, query, facilityID, pq.Array(seats), end, start, excludeGroup)
	if err != nil {
		return nil, err
	}

	return overlaps, nil
}

func (r *repository) FindHolderOverlap(ctx context.Context, holderID int, start, end time.Time, excludeGroup uuid.UUID) (*Reservation, error) {
	query := `
		SELECT id, group_id, holder_id, facility_id, seat_number, start_time, end_time, anonymous, created_at
		FROM reservations
		WHERE holder_id = $1
		  AND start_time < $2
		  AND end_time > $3
		  AND group_id <> $4
		LIMIT 1
	`

	var res Reservation
	err := r.db.GetContext(ctx, &res, query, holderID, end, start, excludeGroup)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &res, nil
}

func (r *repository) UpdateRow(ctx context.Context, id, seatNumber int, start, end time.Time) (*Reservation, error) {
	query := `
		UPDATE reservations
		SET seat_number = $2, start_time = $3, end_time = $4
		WHERE id = $1
		RETURNING id, group_id, holder_id, facility_id, seat_number, start_time, end_time, anonymous, created_at
	`

	var res Reservation
	err := r.db.GetContext(ctx, &res, query, id, seatNumber, start, end)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrSeatConflict
		}
		return nil, err
	}

	return &res, nil
}

func (r *repository) DeleteGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE group_id = $1`, groupID)
	if err != nil {
		return 0, err
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if removed == 0 {
		return 0, ErrNotFound
	}

	return removed, nil
}

func (r *repository) DeleteByID(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if removed == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *repository) ListByHolder(ctx context.Context, holderID int) ([]ReservationWithDetails, error) {
	query := `
		SELECT
			r.id, r.group_id, r.holder_id, r.facility_id, r.seat_number,
			r.start_time, r.end_time, r.anonymous, r.created_at,
			f.name AS facility_name,
			u.name AS holder_name,
			u.email AS holder_email
		FROM reservations r
		JOIN facilities f ON r.facility_id = f.id
		JOIN users u ON r.holder_id = u.id
		WHERE r.holder_id = $1
		ORDER BY r.start_time ASC, r.seat_number ASC
	`

	var reservations []ReservationWithDetails
	err := r.db.SelectContext(ctx, &reservations, query, holderID)
	if err != nil {
		return nil, err
	}

	return reservations, nil
}

func (r *repository) ListAll(ctx context.Context) ([]ReservationWithDetails, error) {
	query := `
		SELECT
			r.id, r.group_id, r.holder_id, r.facility_id, r.seat_number,
			r.start_time, r.end_time, r.anonymous, r.created_at,
			f.name AS facility_name,
			u.name AS holder_name,
			u.email AS holder_email
		FROM reservations r
		JOIN facilities f ON r.facility_id = f.id
		JOIN users u ON r.holder_id = u.id
		ORDER BY r.start_time DESC, r.seat_number ASC
	`

	var reservations []ReservationWithDetails
	err := r.db.SelectContext(ctx, &reservations, query)
	if err != nil {
		return nil, err
	}

	return reservations, nil
}

func (r *repository) ListForFacilityDate(ctx context.Context, facilityID int, dayStart, dayEnd time.Time) ([]Reservation, error) {
	query := `
		SELECT id, group_id, holder_id, facility_id, seat_number, start_time, end_time, anonymous, created_at
		FROM reservations
		WHERE facility_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time ASC, seat_number ASC
	`

	var reservations []Reservation
	err := r.db.SelectContext(ctx, &reservations, query, facilityID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return reservations, nil
}
