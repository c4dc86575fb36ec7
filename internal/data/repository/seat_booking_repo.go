package repository

import (
	"context"
	"errors"
	"fmt"

	"bus-tracker/internal/data/entity"
	"bus-tracker/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const seatBookingColumns = `id, trip_id, seat_number, user_id, status, payment_status, booked_at`

type SeatBookingRepository interface {
	// Create inserts the booking in one statement. The partial unique indexes
	// on (trip, seat) and (trip, user) decide races: the loser gets
	// ErrSeatConflict or ErrUserConflict and nothing is written.
	Create(ctx context.Context, booking *entity.SeatBooking) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.SeatBooking, error)
	FindActiveByTripAndUser(ctx context.Context, tripID, userID uuid.UUID) (*entity.SeatBooking, error)
	FindBookedSeatNumbers(ctx context.Context, tripID uuid.UUID) ([]string, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.SeatBooking, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type seatBookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatBookingRepository(db database.PgxIface, log *zap.Logger) SeatBookingRepository {
	return &seatBookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat_booking")),
	}
}

func (r *seatBookingRepository) Create(ctx context.Context, booking *entity.SeatBooking) error {
	query := `
		INSERT INTO seat_bookings (id, trip_id, seat_number, user_id, status, payment_status, booked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.TripID,
		booking.SeatNumber,
		booking.UserID,
		booking.Status,
		booking.PaymentStatus,
		booking.BookedAt,
	)
	if err == nil {
		return nil
	}

	if constraint, ok := database.UniqueViolation(err); ok {
		switch constraint {
		case constraintTripSeat:
			r.log.Info("Seat claim lost to another booking",
				zap.String("trip_id", booking.TripID.String()),
				zap.String("seat_number", booking.SeatNumber),
			)
			return ErrSeatConflict
		case constraintTripUser:
			r.log.Info("User already holds a seat on trip",
				zap.String("trip_id", booking.TripID.String()),
				zap.String("user_id", booking.UserID.String()),
			)
			return ErrUserConflict
		}
	}

	r.log.Error("Failed to create seat booking",
		zap.Error(err),
		zap.String("trip_id", booking.TripID.String()),
		zap.String("seat_number", booking.SeatNumber),
		zap.String("user_id", booking.UserID.String()),
	)
	return fmt.Errorf("create seat booking %s on trip %s: %w", booking.SeatNumber, booking.TripID.String(), err)
}

func (r *seatBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SeatBooking, error) {
	query := `SELECT ` + seatBookingColumns + ` FROM seat_bookings WHERE id = $1`

	booking, err := scanSeatBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seat booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find seat booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *seatBookingRepository) FindActiveByTripAndUser(ctx context.Context, tripID, userID uuid.UUID) (*entity.SeatBooking, error) {
	query := `
		SELECT ` + seatBookingColumns + `
		FROM seat_bookings
		WHERE trip_id = $1 AND user_id = $2 AND status <> 'cancelled'
	`

	booking, err := scanSeatBooking(r.db.QueryRow(ctx, query, tripID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seat booking by trip and user",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find seat booking for trip %s user %s: %w", tripID.String(), userID.String(), err)
	}

	return booking, nil
}

func (r *seatBookingRepository) FindBookedSeatNumbers(ctx context.Context, tripID uuid.UUID) ([]string, error) {
	query := `
		SELECT seat_number
		FROM seat_bookings
		WHERE trip_id = $1 AND status <> 'cancelled'
		ORDER BY booked_at
	`

	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		r.log.Error("Failed to find booked seats",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
		)
		return nil, fmt.Errorf("find booked seats for trip %s: %w", tripID.String(), err)
	}
	defer rows.Close()

	seats := []string{}
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			r.log.Error("Failed to scan seat number row", zap.Error(err))
			return nil, fmt.Errorf("scan seat number row: %w", err)
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

func (r *seatBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.SeatBooking, error) {
	query := `
		SELECT ` + seatBookingColumns + `
		FROM seat_bookings
		WHERE user_id = $1
		ORDER BY booked_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find seat bookings by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find seat bookings by user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.SeatBooking
	for rows.Next() {
		booking, err := scanSeatBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan seat booking row", zap.Error(err))
			return nil, fmt.Errorf("scan seat booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *seatBookingRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM seat_bookings`)
	if err != nil {
		r.log.Error("Failed to clear seat bookings", zap.Error(err))
		return 0, fmt.Errorf("clear seat bookings: %w", err)
	}

	deleted := result.RowsAffected()
	r.log.Warn("All seat bookings cleared", zap.Int64("deleted", deleted))
	return deleted, nil
}

func scanSeatBooking(row pgx.Row) (*entity.SeatBooking, error) {
	var booking entity.SeatBooking
	err := row.Scan(
		&booking.ID,
		&booking.TripID,
		&booking.SeatNumber,
		&booking.UserID,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.BookedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
