package wire

import (
	"bus-tracker/internal/adaptor"
	"bus-tracker/internal/data/repository"
	"bus-tracker/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTrip(
	r chi.Router,
	tripHandler *adaptor.TripHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /trips seeds the default trips when the registry is empty
	r.Get("/trips", tripHandler.ListTrips)
	r.Get("/trips/{id}", tripHandler.GetTrip)

	// ==================== ADMIN ROUTES ====================
	r.Route("/admin/trips", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(log))

		r.Post("/", tripHandler.CreateTrip)
		r.Patch("/{id}/active", tripHandler.SetActive)
		r.Delete("/{id}", tripHandler.DeleteTrip)
	})
}
