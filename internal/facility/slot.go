package facility

import (
	"errors"
	"fmt"
	"time"
)

// Operating window and booking horizon. Every reservation occupies exactly
// one slot; duration is not independently settable.
const (
	OpenHour  = 9
	CloseHour = 18

	SlotDuration = 30 * time.Minute

	// Bookings are accepted from today up to and including today+BookingHorizonDays.
	BookingHorizonDays = 7
)

var (
	ErrInvalidTime = errors.New("time must be on a half-hour boundary within operating hours")
	ErrInvalidDate = errors.New("date must be within the reservable window")
)

// Slot is one bookable half-hour window, identified by its start time.
type Slot struct {
	Start string `json:"start" example:"09:00"`
	End   string `json:"end" example:"09:30"`
	Label string `json:"label" example:"09:00 - 09:30"`
}

// Slots enumerates every slot of the operating day in order. The last slot is
// capped at closing time (17:30 - 18:00).
func Slots() []Slot {
	slots := make([]Slot, 0, (CloseHour-OpenHour)*2)
	for hour := OpenHour; hour < CloseHour; hour++ {
		for minute := 0; minute < 60; minute += 30 {
			start := fmt.Sprintf("%02d:%02d", hour, minute)
			endHour, endMinute := hour, minute+30
			if endMinute == 60 {
				endHour, endMinute = hour+1, 0
			}
			end := fmt.Sprintf("%02d:%02d", endHour, endMinute)
			slots = append(slots, Slot{
				Start: start,
				End:   end,
				Label: start + " - " + end,
			})
		}
	}
	return slots
}

// ParseSlotStart combines a date ("2006-01-02") and a slot start ("15:04")
// into the concrete start instant, rejecting times off the half-hour grid or
// outside operating hours.
func ParseSlotStart(date, slotTime string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	clock, err := time.ParseInLocation("15:04", slotTime, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}

	hour, minute := clock.Hour(), clock.Minute()
	if minute != 0 && minute != 30 {
		return time.Time{}, ErrInvalidTime
	}
	if hour < OpenHour || hour >= CloseHour {
		return time.Time{}, ErrInvalidTime
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local), nil
}

// DateWindow returns the inclusive range of bookable dates as of today,
// truncated to midnight.
func DateWindow(today time.Time) (min, max time.Time) {
	min = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	max = min.AddDate(0, 0, BookingHorizonDays)
	return min, max
}

// ValidateDate rejects dates in the past or beyond the booking horizon.
func ValidateDate(date string, today time.Time) error {
	day, err := time.ParseInLocation("2006-01-02", date, today.Location())
	if err != nil {
		return ErrInvalidDate
	}

	min, max := DateWindow(today)
	if day.Before(min) || day.After(max) {
		return ErrInvalidDate
	}
	return nil
}
