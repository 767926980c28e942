package facility

import "time"

type Facility struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type FacilityWithSeats struct {
	Facility
	Seats []int `json:"seats"`
}
