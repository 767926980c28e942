package facility

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func TestGetAllFacilities(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery("FROM facilities").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(1, "Computer Lab", now).
			AddRow(2, "Reading Room", now))

	facilities, err := repo.GetAllFacilities(context.Background())
	require.NoError(t, err)
	require.Len(t, facilities, 2)
	require.Equal(t, "Computer Lab", facilities[0].Name)
}

func TestGetFacilityByID(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("FROM facilities").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(1, "Reading Room", time.Now()))

	f, err := repo.GetFacilityByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Reading Room", f.Name)
}

func TestGetFacilityByIDNoRows(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("FROM facilities").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}))

	_, err := repo.GetFacilityByID(context.Background(), 42)
	require.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestGetSeats(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("FROM facility_seats").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow(1).AddRow(2).AddRow(3))

	seats, err := repo.GetSeats(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, seats)
}

func TestSeatsExist(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	// All requested seats present
	mock.ExpectQuery("FROM facility_seats").
		WithArgs(1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	ok, err := repo.SeatsExist(context.Background(), 1, []int{2, 5})
	require.NoError(t, err)
	require.True(t, ok)

	// One of the seats missing
	mock.ExpectQuery("FROM facility_seats").
		WithArgs(1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err = repo.SeatsExist(context.Background(), 1, []int{2, 99})
	require.NoError(t, err)
	require.False(t, ok)
}
