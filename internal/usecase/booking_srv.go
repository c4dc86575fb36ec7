package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bus-tracker/internal/data/entity"
	"bus-tracker/internal/data/repository"
	"bus-tracker/internal/notify"
	"bus-tracker/pkg/cache"
	"bus-tracker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier accepts confirmations without blocking the caller.
type Notifier interface {
	Dispatch(event notify.BookingConfirmed) bool
}

type BookingResult struct {
	OK        bool
	BookingID uuid.UUID
	BookedAt  time.Time
	Ref       string
}

type BookingPage struct {
	Trip            *entity.Trip
	ExistingBooking *entity.SeatBooking
	Booked          []string
}

type BookingService interface {
	// ClaimSeat books one seat for the user. Concurrent claims on the same
	// seat are decided by the storage unique indexes: one wins, the rest get
	// ErrSeatTaken.
	ClaimSeat(ctx context.Context, tripID string, userID uuid.UUID, seatCode string) (*BookingResult, error)

	ListBookedSeats(ctx context.Context, tripID string) ([]string, error)
	BookedSeats(ctx context.Context, tripID string) ([]string, error)
	ExistingBooking(ctx context.Context, tripID string, userID uuid.UUID) (*entity.SeatBooking, error)
	BookingPage(ctx context.Context, tripID string, userID uuid.UUID) (*BookingPage, error)

	// Admin
	ClearAllBookings(ctx context.Context) (int64, error)
}

type bookingService struct {
	repo     *repository.Repository
	trips    TripService
	snapshot *cache.SeatSnapshot
	notifier Notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	trips TripService,
	snapshot *cache.SeatSnapshot,
	notifier Notifier,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:     repo,
		trips:    trips,
		snapshot: snapshot,
		notifier: notifier,
		now:      time.Now,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) ClaimSeat(ctx context.Context, tripID string, userID uuid.UUID, seatCode string) (*BookingResult, error) {
	// 1. Seat code shape
	if !utils.IsSeatCode(seatCode) {
		return nil, ErrInvalidSeat
	}

	// 2. Trip must exist, be open, and contain the seat
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !trip.AcceptsBookings(now) {
		return nil, ErrTripInactive
	}
	if _, ok := trip.SeatOrdinal(seatCode); !ok {
		return nil, ErrInvalidSeat
	}

	// 3. One seat per user per trip
	existing, err := s.repo.SeatBooking.FindActiveByTripAndUser(ctx, trip.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if existing != nil {
		return nil, ErrDuplicateUserBooking
	}

	// 4. Single insert, the unique indexes settle any race
	booking := &entity.SeatBooking{
		ID:            utils.GenerateUUID(),
		TripID:        trip.ID,
		SeatNumber:    seatCode,
		UserID:        userID,
		Status:        entity.BookingStatusConfirmed,
		PaymentStatus: entity.PaymentStatusPending,
		BookedAt:      now,
	}

	if err := s.repo.SeatBooking.Create(ctx, booking); err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatConflict):
			return nil, ErrSeatTaken
		case errors.Is(err, repository.ErrUserConflict):
			return nil, ErrDuplicateUserBooking
		default:
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
	}

	s.log.Info("Seat booked",
		zap.String("booking_id", booking.ID.String()),
		zap.String("trip_id", trip.ID.String()),
		zap.String("seat_number", seatCode),
		zap.String("user_id", userID.String()),
	)

	// 5. Committed: everything below is best effort
	if err := s.snapshot.Invalidate(context.WithoutCancel(ctx), trip.ID.String()); err != nil {
		s.log.Warn("Failed to invalidate booked seats snapshot",
			zap.Error(err),
			zap.String("trip_id", trip.ID.String()),
		)
	}

	ref := utils.GenerateBookingRef(booking.ID, booking.BookedAt)
	if s.notifier != nil {
		s.notifier.Dispatch(notify.BookingConfirmed{
			BookingID:  booking.ID,
			Ref:        ref,
			UserID:     userID,
			TripID:     trip.ID,
			TripName:   trip.Name,
			TripDate:   trip.Date.Format(time.DateOnly),
			Route:      trip.Route,
			SeatNumber: seatCode,
			BookedAt:   booking.BookedAt,
		})
	}

	return &BookingResult{
		OK:        true,
		BookingID: booking.ID,
		BookedAt:  booking.BookedAt,
		Ref:       ref,
	}, nil
}

// ListBookedSeats reads the ledger directly.
func (s *bookingService) ListBookedSeats(ctx context.Context, tripID string) ([]string, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return s.loadBookedSeats(ctx, trip.ID)
}

// BookedSeats is the polling path: it serves the Redis snapshot when one is
// fresh and refills it from the ledger otherwise.
func (s *bookingService) BookedSeats(ctx context.Context, tripID string) ([]string, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	key := trip.ID.String()
	seats, ok, err := s.snapshot.Get(ctx, key)
	if err != nil {
		s.log.Warn("Booked seats snapshot unavailable", zap.Error(err), zap.String("trip_id", key))
	}
	if ok {
		return seats, nil
	}

	seats, err = s.loadBookedSeats(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	// A claim landing between the load and this Set has its invalidation
	// overwritten, so the snapshot can miss that seat until the TTL expires.
	// ClaimSeat re-checks against Postgres, so staleness never double-books.
	if err := s.snapshot.Set(ctx, key, seats); err != nil {
		s.log.Warn("Failed to store booked seats snapshot", zap.Error(err), zap.String("trip_id", key))
	}
	return seats, nil
}

func (s *bookingService) ExistingBooking(ctx context.Context, tripID string, userID uuid.UUID) (*entity.SeatBooking, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.SeatBooking.FindActiveByTripAndUser(ctx, trip.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return booking, nil
}

func (s *bookingService) BookingPage(ctx context.Context, tripID string, userID uuid.UUID) (*BookingPage, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.SeatBooking.FindActiveByTripAndUser(ctx, trip.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	booked, err := s.loadBookedSeats(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	return &BookingPage{
		Trip:            trip,
		ExistingBooking: existing,
		Booked:          booked,
	}, nil
}

func (s *bookingService) ClearAllBookings(ctx context.Context) (int64, error) {
	deleted, err := s.repo.SeatBooking.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err := s.snapshot.InvalidateAll(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn("Failed to invalidate booked seats snapshots", zap.Error(err))
	}

	s.log.Warn("All bookings cleared", zap.Int64("deleted", deleted))
	return deleted, nil
}

func (s *bookingService) loadBookedSeats(ctx context.Context, tripID uuid.UUID) ([]string, error) {
	seats, err := s.repo.SeatBooking.FindBookedSeatNumbers(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return seats, nil
}
