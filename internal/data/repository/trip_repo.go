package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"bus-tracker/internal/data/entity"
	"bus-tracker/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// seedLockKey serialises EnsureSeeded across concurrent first requests.
const seedLockKey int64 = 0x7472697073

const tripColumns = `id, name, route, trip_date, to_char(departure_time, 'HH24:MI'),
		       total_seats, seats_per_row, fare::float8, is_active, created_at, updated_at`

type TripRepository interface {
	Create(ctx context.Context, trip *entity.Trip) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error)
	All(ctx context.Context) iter.Seq2[*entity.Trip, error]
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// EnsureSeeded inserts trips only when the table is empty.
	EnsureSeeded(ctx context.Context, trips []*entity.Trip) (int, error)
}

type tripRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTripRepository(db database.PgxIface, log *zap.Logger) TripRepository {
	return &tripRepository{
		db:  db,
		log: log.With(zap.String("repository", "trip")),
	}
}

func (r *tripRepository) Create(ctx context.Context, trip *entity.Trip) error {
	query := `
		INSERT INTO trips (id, name, route, trip_date, departure_time, total_seats,
		                   seats_per_row, fare, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::time, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		trip.ID,
		trip.Name,
		trip.Route,
		trip.Date,
		trip.DepartureTime,
		trip.TotalSeats,
		trip.SeatsPerRow,
		trip.Fare,
		trip.IsActive,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create trip",
			zap.Error(err),
			zap.String("name", trip.Name),
		)
		return fmt.Errorf("create trip %s: %w", trip.Name, err)
	}

	return nil
}

func (r *tripRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find trip by ID",
			zap.Error(err),
			zap.String("trip_id", id.String()),
		)
		return nil, fmt.Errorf("find trip by ID %s: %w", id.String(), err)
	}

	return trip, nil
}

// All yields trips ordered by date then departure time. Every range over the
// returned sequence runs a fresh query, so it can be iterated more than once.
func (r *tripRepository) All(ctx context.Context) iter.Seq2[*entity.Trip, error] {
	return func(yield func(*entity.Trip, error) bool) {
		query := `SELECT ` + tripColumns + ` FROM trips ORDER BY trip_date, departure_time, created_at`

		rows, err := r.db.Query(ctx, query)
		if err != nil {
			r.log.Error("Failed to list trips", zap.Error(err))
			yield(nil, fmt.Errorf("list trips: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			trip, err := scanTrip(rows)
			if err != nil {
				r.log.Error("Failed to scan trip row", zap.Error(err))
				yield(nil, fmt.Errorf("scan trip row: %w", err))
				return
			}
			if !yield(trip, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate trips: %w", err))
		}
	}
}

func (r *tripRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM trips`).Scan(&count); err != nil {
		r.log.Error("Failed to count trips", zap.Error(err))
		return 0, fmt.Errorf("count trips: %w", err)
	}
	return count, nil
}

func (r *tripRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE trips SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, active)
	if err != nil {
		r.log.Error("Failed to update trip active flag",
			zap.Error(err),
			zap.String("trip_id", id.String()),
			zap.Bool("active", active),
		)
		return fmt.Errorf("set trip %s active=%t: %w", id.String(), active, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("trip %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

// Delete removes the trip; its bookings go with it through ON DELETE CASCADE.
func (r *tripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete trip",
			zap.Error(err),
			zap.String("trip_id", id.String()),
		)
		return fmt.Errorf("delete trip %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("trip %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Trip deleted", zap.String("trip_id", id.String()))
	return nil
}

func (r *tripRepository) EnsureSeeded(ctx context.Context, trips []*entity.Trip) (int, error) {
	// Unlocked check first: once trips exist, listings never touch the lock.
	existing, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey); err != nil {
		return 0, fmt.Errorf("acquire seed lock: %w", err)
	}

	// Re-check under the lock: a concurrent request may have seeded meanwhile.
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM trips`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count trips: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	query := `
		INSERT INTO trips (id, name, route, trip_date, departure_time, total_seats,
		                   seats_per_row, fare, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::time, $6, $7, $8, $9, $10, $11)
	`
	for _, trip := range trips {
		_, err := tx.Exec(ctx, query,
			trip.ID,
			trip.Name,
			trip.Route,
			trip.Date,
			trip.DepartureTime,
			trip.TotalSeats,
			trip.SeatsPerRow,
			trip.Fare,
			trip.IsActive,
			trip.CreatedAt,
			trip.UpdatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("seed trip %s: %w", trip.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit seed transaction: %w", err)
	}

	r.log.Info("Seeded default trips", zap.Int("count", len(trips)))
	return len(trips), nil
}

func scanTrip(row pgx.Row) (*entity.Trip, error) {
	var trip entity.Trip
	err := row.Scan(
		&trip.ID,
		&trip.Name,
		&trip.Route,
		&trip.Date,
		&trip.DepartureTime,
		&trip.TotalSeats,
		&trip.SeatsPerRow,
		&trip.Fare,
		&trip.IsActive,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}
