package repository

import (
	"context"
	"errors"
	"fmt"

	"bus-tracker/internal/data/entity"
	"bus-tracker/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type LocationRepository interface {
	Create(ctx context.Context, location *entity.BusLocation) error
	FindLatest(ctx context.Context) (*entity.BusLocation, error)
}

type locationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewLocationRepository(db database.PgxIface, log *zap.Logger) LocationRepository {
	return &locationRepository{
		db:  db,
		log: log.With(zap.String("repository", "location")),
	}
}

func (r *locationRepository) Create(ctx context.Context, location *entity.BusLocation) error {
	query := `
		INSERT INTO bus_locations (lat, lng, recorded_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := r.db.QueryRow(ctx, query, location.Lat, location.Lng, location.RecordedAt).Scan(&location.ID); err != nil {
		r.log.Error("Failed to store bus location",
			zap.Error(err),
			zap.Float64("lat", location.Lat),
			zap.Float64("lng", location.Lng),
		)
		return fmt.Errorf("create bus location: %w", err)
	}

	return nil
}

func (r *locationRepository) FindLatest(ctx context.Context) (*entity.BusLocation, error) {
	query := `
		SELECT id, lat, lng, recorded_at
		FROM bus_locations
		ORDER BY id DESC
		LIMIT 1
	`

	var location entity.BusLocation
	err := r.db.QueryRow(ctx, query).Scan(
		&location.ID,
		&location.Lat,
		&location.Lng,
		&location.RecordedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find latest bus location", zap.Error(err))
		return nil, fmt.Errorf("find latest bus location: %w", err)
	}

	return &location, nil
}
