package reservation

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is one seat held for one half-hour window. A multi-seat booking
// is a group of rows sharing a GroupID; the group is created and cancelled as
// a unit.
type Reservation struct {
	ID         int       `db:"id" json:"id"`
	GroupID    uuid.UUID `db:"group_id" json:"group_id"`
	HolderID   int       `db:"holder_id" json:"holder_id"`
	FacilityID int       `db:"facility_id" json:"facility_id"`
	SeatNumber int       `db:"seat_number" json:"seat_number"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	EndTime    time.Time `db:"end_time" json:"end_time"`
	Anonymous  bool      `db:"anonymous" json:"anonymous"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type ReservationWithDetails struct {
	Reservation
	FacilityName string `db:"facility_name" json:"facility_name"`
	HolderName   string `db:"holder_name" json:"holder_name"`
	HolderEmail  string `db:"holder_email" json:"holder_email"`
}

// DisplayName is what non-staff viewers see for the holder of a row.
func (r ReservationWithDetails) DisplayName() string {
	if r.Anonymous {
		return "Anonymous"
	}
	return r.HolderName
}

type CreateRequest struct {
	FacilityID int    `json:"facility_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	Seats      []int  `json:"seats" binding:"required,min=1"`
	Anonymous  bool   `json:"anonymous"`
}

type CreateOnBehalfRequest struct {
	MemberEmail string `json:"member_email" binding:"required,email"`
	FacilityID  int    `json:"facility_id" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Seats       []int  `json:"seats" binding:"required,min=1"`
}

type EditRequest struct {
	SeatNumber int    `json:"seat_number" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
}

type DeleteResponse struct {
	Removed int64 `json:"removed" example:"2"`
}
