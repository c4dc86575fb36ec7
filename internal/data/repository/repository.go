package repository

import (
	"bus-tracker/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Session     SessionRepository
	Trip        TripRepository
	SeatBooking SeatBookingRepository
	Location    LocationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Session:     NewSessionRepository(db, log),
		Trip:        NewTripRepository(db, log),
		SeatBooking: NewSeatBookingRepository(db, log),
		Location:    NewLocationRepository(db, log),
	}
}
