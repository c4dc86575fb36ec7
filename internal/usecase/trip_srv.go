package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"bus-tracker/internal/data/entity"
	"bus-tracker/internal/data/repository"
	"bus-tracker/internal/dto/request"
	"bus-tracker/pkg/utils"

	"go.uber.org/zap"
)

// defaultTrips are created on first access when the registry is empty.
var defaultTrips = []string{"Ronobheri", "Bhorer Alo"}

type TripService interface {
	// ListTrips is lazy and restartable: each range re-reads storage.
	ListTrips(ctx context.Context) iter.Seq2[*entity.Trip, error]
	GetTrip(ctx context.Context, tripID string) (*entity.Trip, error)
	EnsureSeedTrips(ctx context.Context) (int, error)

	// Admin endpoints
	CreateTrip(ctx context.Context, req *request.CreateTripRequest) (*entity.Trip, error)
	SetActive(ctx context.Context, tripID string, active bool) (*entity.Trip, error)
	DeleteTrip(ctx context.Context, tripID string) error
}

type tripService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewTripService(repo *repository.Repository, log *zap.Logger) TripService {
	return &tripService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "trip")),
	}
}

func (s *tripService) ListTrips(ctx context.Context) iter.Seq2[*entity.Trip, error] {
	return func(yield func(*entity.Trip, error) bool) {
		for trip, err := range s.repo.Trip.All(ctx) {
			if err != nil {
				yield(nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
				return
			}
			if !yield(trip, nil) {
				return
			}
		}
	}
}

func (s *tripService) GetTrip(ctx context.Context, tripID string) (*entity.Trip, error) {
	id, err := utils.ParseUUID(tripID)
	if err != nil {
		return nil, ErrTripNotFound
	}

	trip, err := s.repo.Trip.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	return trip, nil
}

func (s *tripService) EnsureSeedTrips(ctx context.Context) (int, error) {
	now := s.now()
	today := dateOnly(now)

	trips := make([]*entity.Trip, 0, len(defaultTrips))
	for _, name := range defaultTrips {
		trip := &entity.Trip{
			Base:          entity.Base{ID: utils.GenerateUUID()},
			Name:          name,
			Date:          today,
			DepartureTime: entity.DefaultDepartureTime,
			TotalSeats:    entity.DefaultTotalSeats,
			SeatsPerRow:   entity.DefaultSeatsPerRow,
			IsActive:      true,
		}
		trip.Stamp(now)
		trips = append(trips, trip)
	}

	created, err := s.repo.Trip.EnsureSeeded(ctx, trips)
	if err != nil {
		s.log.Error("Failed to seed default trips", zap.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if created > 0 {
		s.log.Info("Default trips created", zap.Int("count", created))
	}
	return created, nil
}

func (s *tripService) CreateTrip(ctx context.Context, req *request.CreateTripRequest) (*entity.Trip, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create trip validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date: %v", ErrValidation, err)
	}

	now := s.now()
	if date.Before(dateOnly(now)) {
		return nil, ErrTripInPast
	}

	trip := &entity.Trip{
		Base:          entity.Base{ID: utils.GenerateUUID()},
		Name:          req.Name,
		Route:         req.Route,
		Date:          date,
		DepartureTime: req.DepartureTime,
		TotalSeats:    req.TotalSeats,
		SeatsPerRow:   req.SeatsPerRow,
		Fare:          req.Fare,
		IsActive:      true,
	}
	trip.Stamp(now)
	if trip.DepartureTime == "" {
		trip.DepartureTime = entity.DefaultDepartureTime
	}
	if trip.TotalSeats == 0 {
		trip.TotalSeats = entity.DefaultTotalSeats
	}
	if trip.SeatsPerRow == 0 {
		trip.SeatsPerRow = entity.DefaultSeatsPerRow
	}

	if err := s.repo.Trip.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	s.log.Info("Trip created",
		zap.String("trip_id", trip.ID.String()),
		zap.String("trip", trip.String()),
	)
	return trip, nil
}

func (s *tripService) SetActive(ctx context.Context, tripID string, active bool) (*entity.Trip, error) {
	id, err := utils.ParseUUID(tripID)
	if err != nil {
		return nil, ErrTripNotFound
	}

	if err := s.repo.Trip.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	s.log.Info("Trip active flag changed",
		zap.String("trip_id", tripID),
		zap.Bool("active", active),
	)
	return s.GetTrip(ctx, tripID)
}

// DeleteTrip removes the trip and, through the foreign key, its bookings.
func (s *tripService) DeleteTrip(ctx context.Context, tripID string) error {
	id, err := utils.ParseUUID(tripID)
	if err != nil {
		return ErrTripNotFound
	}

	if err := s.repo.Trip.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTripNotFound
		}
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
