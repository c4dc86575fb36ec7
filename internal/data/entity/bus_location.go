package entity

import "time"

type BusLocation struct {
	ID         int64     `db:"id"`
	Lat        float64   `db:"lat"`
	Lng        float64   `db:"lng"`
	RecordedAt time.Time `db:"recorded_at"`
}
