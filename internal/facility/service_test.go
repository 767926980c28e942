package facility

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) GetAllFacilities(ctx context.Context) ([]Facility, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Facility), args.Error(1)
}

func (m *MockRepo) GetFacilityByID(ctx context.Context, id int) (*Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Facility), args.Error(1)
}

func (m *MockRepo) GetSeats(ctx context.Context, facilityID int) ([]int, error) {
	args := m.Called(ctx, facilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockRepo) SeatsExist(ctx context.Context, facilityID int, seats []int) (bool, error) {
	args := m.Called(ctx, facilityID, seats)
	return args.Bool(0), args.Error(1)
}

func TestGetFacilityByIDWithSeats(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("GetFacilityByID", ctx, 1).Return(&Facility{ID: 1, Name: "Reading Room"}, nil)
	repo.On("GetSeats", ctx, 1).Return([]int{1, 2, 3}, nil)

	f, err := svc.GetFacilityByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Reading Room", f.Name)
	assert.Equal(t, []int{1, 2, 3}, f.Seats)
}

func TestGetFacilityByIDNotFound(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("GetFacilityByID", ctx, 42).Return(nil, ErrFacilityNotFound)

	_, err := svc.GetFacilityByID(ctx, 42)
	assert.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestGetFacilityByIDStorageFailure(t *testing.T) {
	// A database failure must not masquerade as a missing facility.
	repo := new(MockRepo)
	svc := NewService(repo)
	ctx := context.Background()
	dbErr := errors.New("pq: connection refused")

	repo.On("GetFacilityByID", ctx, 1).Return(nil, dbErr)

	_, err := svc.GetFacilityByID(ctx, 1)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrFacilityNotFound)
}
