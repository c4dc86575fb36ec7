package usecase

import (
	"context"
	"fmt"
	"time"

	"bus-tracker/internal/data/entity"
	"bus-tracker/internal/data/repository"
	"bus-tracker/internal/dto/request"
	"bus-tracker/pkg/cache"
	"bus-tracker/pkg/utils"

	"go.uber.org/zap"
)

type LocationService interface {
	Record(ctx context.Context, req *request.RecordLocationRequest) (*entity.BusLocation, error)
	// Latest returns nil when nothing has been recorded.
	Latest(ctx context.Context) (*entity.BusLocation, error)
}

type locationService struct {
	repo   *repository.Repository
	latest *cache.LocationCache
	log    *zap.Logger
}

func NewLocationService(repo *repository.Repository, latest *cache.LocationCache, log *zap.Logger) LocationService {
	return &locationService{
		repo:   repo,
		latest: latest,
		log:    log.With(zap.String("service", "location")),
	}
}

func (s *locationService) Record(ctx context.Context, req *request.RecordLocationRequest) (*entity.BusLocation, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	// GPS modules report 0,0 before they have a fix
	if *req.Lat == 0 && *req.Lng == 0 {
		return nil, ErrInvalidLocation
	}

	location := &entity.BusLocation{
		Lat:        *req.Lat,
		Lng:        *req.Lng,
		RecordedAt: time.Now(),
	}
	if err := s.repo.Location.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	fix := cache.LocationFix{
		ID:         location.ID,
		Lat:        location.Lat,
		Lng:        location.Lng,
		RecordedAt: location.RecordedAt,
	}
	if err := s.latest.Store(ctx, fix); err != nil {
		s.log.Warn("Failed to cache latest location", zap.Error(err))
	}

	return location, nil
}

func (s *locationService) Latest(ctx context.Context) (*entity.BusLocation, error) {
	fix, err := s.latest.Latest(ctx)
	if err != nil {
		s.log.Warn("Latest location cache unavailable", zap.Error(err))
	}
	if fix != nil {
		return &entity.BusLocation{
			ID:         fix.ID,
			Lat:        fix.Lat,
			Lng:        fix.Lng,
			RecordedAt: fix.RecordedAt,
		}, nil
	}

	location, err := s.repo.Location.FindLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return location, nil
}
