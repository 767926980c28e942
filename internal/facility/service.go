package facility

import (
	"context"
	"errors"
)

var ErrFacilityNotFound = errors.New("facility not found")

type Service interface {
	GetAllFacilities(ctx context.Context) ([]Facility, error)
	GetFacilityByID(ctx context.Context, id int) (*FacilityWithSeats, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetAllFacilities(ctx context.Context) ([]Facility, error) {
	return s.repo.GetAllFacilities(ctx)
}

func (s *service) GetFacilityByID(ctx context.Context, id int) (*FacilityWithSeats, error) {
	// Storage failures pass through untouched; only a genuinely absent row
	// becomes ErrFacilityNotFound (mapped in the repository).
	facility, err := s.repo.GetFacilityByID(ctx, id)
	if err != nil {
		return nil, err
	}

	seats, err := s.repo.GetSeats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &FacilityWithSeats{Facility: *facility, Seats: seats}, nil
}
