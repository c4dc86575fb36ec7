package adaptor

import (
	"bus-tracker/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Trip     *TripHandler
	Booking  *BookingHandler
	Location *LocationHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		User:     NewUserHandler(service.User, log),
		Trip:     NewTripHandler(service.Trip, log),
		Booking:  NewBookingHandler(service.Booking, log),
		Location: NewLocationHandler(service.Location, log),
	}
}
