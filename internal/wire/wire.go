package wire

import (
	"net/http"

	"bus-tracker/internal/adaptor"
	"bus-tracker/internal/data/repository"
	"bus-tracker/internal/usecase"
	"bus-tracker/pkg/middleware"
	"bus-tracker/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and the router. rdb may be nil, in which
// case the rate limiter is disabled.
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	rdb *redis.Client,
	deps usecase.Deps,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, deps, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, rdb, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	rdb *redis.Client,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireAuth(r, handler.Auth, repo, logger)
	wireUser(r, handler.User, repo, logger)
	wireTrip(r, handler.Trip, repo, logger)
	wireBooking(r, handler.Booking, repo, config, rdb, logger)
	wireLocation(r, handler.Location, config, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
