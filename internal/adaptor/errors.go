package adaptor

import (
	"errors"
	"net/http"

	"bus-tracker/internal/usecase"
	"bus-tracker/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps service errors onto the envelope response.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrTripInPast),
		errors.Is(err, usecase.ErrInvalidLocation),
		errors.Is(err, usecase.ErrWrongPassword):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrTripNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, usecase.ErrUsernameTaken):
		log.Warn(operation+" failed - already exists", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidToken):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrAccountInactive):
		log.Warn(operation+" failed - account deactivated", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrStorageUnavailable):
		log.Error(operation+" failed - storage unavailable", zap.Error(err))
		utils.ResponseUnavailable(w, "Service temporarily unavailable")

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// bookingFailure is the {ok:false} counterpart for the seat endpoints.
func bookingFailure(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidSeat):
		return http.StatusBadRequest, "Invalid seat"
	case errors.Is(err, usecase.ErrTripInactive):
		return http.StatusBadRequest, "This trip is not open for booking."
	case errors.Is(err, usecase.ErrDuplicateUserBooking):
		return http.StatusBadRequest, "You already booked a seat for this trip."
	case errors.Is(err, usecase.ErrSeatTaken):
		return http.StatusBadRequest, "Seat already booked"
	case errors.Is(err, usecase.ErrTripNotFound):
		return http.StatusNotFound, "Trip not found"
	case errors.Is(err, usecase.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "Booking temporarily unavailable, try again"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
