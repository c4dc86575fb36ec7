package usecase

import (
	"bus-tracker/internal/data/repository"
	"bus-tracker/pkg/cache"
	"bus-tracker/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	Trip     TripService
	Booking  BookingService
	Location LocationService
}

// Deps are the optional collaborators. Zero values are valid: nil caches
// fall through to Postgres and a nil notifier skips confirmations.
type Deps struct {
	Seats     *cache.SeatSnapshot
	Locations *cache.LocationCache
	Notifier  Notifier
	Welcomer  Welcomer
}

func NewService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) *Service {
	trips := NewTripService(repo, log)

	return &Service{
		Auth:     NewAuthService(repo, config, deps.Welcomer, log),
		User:     NewUserService(repo, log),
		Trip:     trips,
		Booking:  NewBookingService(repo, trips, deps.Seats, deps.Notifier, log),
		Location: NewLocationService(repo, deps.Locations, log),
	}
}
