package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"labslot/internal/facility"
	"labslot/internal/reservation"
	"labslot/internal/user"
)

// FreeSlot is one open (seat, slot) combination for a facility and date.
type FreeSlot struct {
	SeatNumber int           `json:"seat_number"`
	Slot       facility.Slot `json:"slot"`
}

type Service interface {
	FreeSlots(ctx context.Context, facilityID int, date string) ([]FreeSlot, error)
	FindMembers(ctx context.Context, query string) ([]user.MemberSummary, error)
}

type service struct {
	facilityRepo    facility.Repository
	reservationRepo reservation.Repository
	userRepo        user.Repository
}

func NewService(facilityRepo facility.Repository, reservationRepo reservation.Repository, userRepo user.Repository) Service {
	return &service{
		facilityRepo:    facilityRepo,
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
	}
}

// FreeSlots enumerates every (seat, slot) pair of the facility's operating
// day that no reservation occupies, ordered by slot then seat.
func (s *service) FreeSlots(ctx context.Context, facilityID int, date string) ([]FreeSlot, error) {
	// The repository maps a missing row to ErrFacilityNotFound; anything else
	// is a storage failure and surfaces as-is.
	if _, err := s.facilityRepo.GetFacilityByID(ctx, facilityID); err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", facility.ErrInvalidDate, date)
	}

	seats, err := s.facilityRepo.GetSeats(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)
	dayEnd := dayStart.AddDate(0, 0, 1)

	reserved, err := s.reservationRepo.ListForFacilityDate(ctx, facilityID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	// Index occupied (seat, start) pairs; slot starts are the key since every
	// reservation spans exactly one slot.
	occupied := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		occupied[occupancyKey(r.SeatNumber, r.StartTime)] = struct{}{}
	}

	var free []FreeSlot
	for _, slot := range facility.Slots() {
		slotStart, err := facility.ParseSlotStart(date, slot.Start)
		if err != nil {
			return nil, err
		}
		for _, seat := range seats {
			if _, taken := occupied[occupancyKey(seat, slotStart)]; taken {
				continue
			}
			free = append(free, FreeSlot{SeatNumber: seat, Slot: slot})
		}
	}

	return free, nil
}

func occupancyKey(seat int, start time.Time) string {
	return fmt.Sprintf("%d@%d", seat, start.Unix())
}

// FindMembers matches active members by case-insensitive substring on name or
// email. An empty query returns an empty listing and never errors.
func (s *service) FindMembers(ctx context.Context, query string) ([]user.MemberSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []user.MemberSummary{}, nil
	}

	return s.userRepo.SearchMembers(ctx, query)
}
