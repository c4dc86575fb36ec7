package response

import (
	"time"

	"bus-tracker/internal/data/entity"
)

type TripResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Route         string    `json:"route,omitempty"`
	Date          string    `json:"date"`
	DepartureTime string    `json:"departure_time"`
	TotalSeats    int       `json:"total_seats"`
	SeatsPerRow   int       `json:"seats_per_row"`
	Fare          float64   `json:"fare"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func TripToResponse(trip *entity.Trip) TripResponse {
	return TripResponse{
		ID:            trip.ID.String(),
		Name:          trip.Name,
		Route:         trip.Route,
		Date:          trip.Date.Format(time.DateOnly),
		DepartureTime: trip.DepartureTime,
		TotalSeats:    trip.TotalSeats,
		SeatsPerRow:   trip.SeatsPerRow,
		Fare:          trip.Fare,
		IsActive:      trip.IsActive,
		CreatedAt:     trip.CreatedAt,
	}
}
