package entity

import (
	"fmt"
	"time"
)

const (
	DefaultTotalSeats    = 50
	DefaultSeatsPerRow   = 4
	DefaultDepartureTime = "07:00"
)

type Trip struct {
	Base
	Name          string    `db:"name"`
	Route         string    `db:"route"`
	Date          time.Time `db:"trip_date"`      // date only, time part ignored
	DepartureTime string    `db:"departure_time"` // HH:MM
	TotalSeats    int       `db:"total_seats"`
	SeatsPerRow   int       `db:"seats_per_row"`
	Fare          float64   `db:"fare"`
	IsActive      bool      `db:"is_active"`
}

// HasDeparted reports whether the trip date is before the calendar day of now.
func (t *Trip) HasDeparted(now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ty, tm, td := t.Date.Date()
	tripDay := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return tripDay.Before(today)
}

// AcceptsBookings is the booking gate: active and not in the past.
func (t *Trip) AcceptsBookings(now time.Time) bool {
	return t.IsActive && !t.HasDeparted(now)
}

// SeatOrdinal maps a seat code like "12B" to its 1-based position in the
// row-major layout. ok is false when the code does not fit the layout.
func (t *Trip) SeatOrdinal(code string) (int, bool) {
	if len(code) < 2 || len(code) > 3 {
		return 0, false
	}
	letter := code[len(code)-1]
	if letter < 'A' || letter > 'Z' {
		return 0, false
	}

	row := 0
	for _, c := range code[:len(code)-1] {
		if c < '0' || c > '9' {
			return 0, false
		}
		row = row*10 + int(c-'0')
	}
	if row < 1 {
		return 0, false
	}

	perRow := t.SeatsPerRow
	if perRow <= 0 {
		perRow = DefaultSeatsPerRow
	}
	col := int(letter-'A') + 1
	if col > perRow {
		return 0, false
	}

	ordinal := (row-1)*perRow + col
	if ordinal > t.TotalSeats {
		return 0, false
	}
	return ordinal, true
}

func (t *Trip) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Date.Format("2006-01-02"))
}
