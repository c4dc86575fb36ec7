package wire

import (
	"bus-tracker/internal/adaptor"
	"bus-tracker/internal/data/repository"
	"bus-tracker/pkg/middleware"
	"bus-tracker/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	rdb *redis.Client,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// polled by the seat picker
	r.Get("/trips/{id}/booked-seats", bookingHandler.BookedSeats)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		r.Get("/trips/{id}/booking", bookingHandler.BookingPage)
		r.With(middleware.RateLimit(config.RateLimit, rdb, "book", log)).
			Post("/trips/{id}/book", bookingHandler.BookSeat)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(log))

		// every method is routed so non-POST requests get the 405 body
		r.HandleFunc("/admin/clear-bookings", bookingHandler.ClearBookings)
	})
}
