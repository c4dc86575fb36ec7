package adaptor

import (
	"encoding/json"
	"mime"
	"net/http"
	"time"

	"bus-tracker/internal/dto/request"
	"bus-tracker/internal/dto/response"
	"bus-tracker/internal/usecase"
	"bus-tracker/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// BookSeat handles POST /trips/{id}/book (protected). The seat comes from
// the "seat" form field; a JSON body {"seat": "..."} is accepted too.
func (h *BookingHandler) BookSeat(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseFail(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req request.BookSeatRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.ResponseFail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		req.Seat = r.PostFormValue("seat")
	}

	result, err := h.service.ClaimSeat(r.Context(), chi.URLParam(r, "id"), userID, req.Seat)
	if err != nil {
		h.fail(w, err, "book seat")
		return
	}

	utils.ResponseOK(w, utils.OKResponse{
		BookingID: result.BookingID.String(),
		BookedAt:  result.BookedAt.Format(time.RFC3339),
	})
}

// BookedSeats handles GET /trips/{id}/booked-seats (public, polled)
func (h *BookingHandler) BookedSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.service.BookedSeats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "booked seats")
		return
	}

	utils.WriteJSON(w, http.StatusOK, response.BookedSeatsResponse{Booked: seats})
}

// BookingPage handles GET /trips/{id}/booking (protected)
func (h *BookingHandler) BookingPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	page, err := h.service.BookingPage(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "booking page")
		return
	}

	utils.ResponseSuccess(w, "Booking page retrieved", response.BookingPageResponse{
		Trip:            response.TripToResponse(page.Trip),
		ExistingBooking: response.SeatBookingToResponse(page.ExistingBooking),
		Booked:          page.Booked,
	})
}

// ClearBookings handles /admin/clear-bookings (admin). Only POST clears;
// other methods get 405 in the same {ok,error} shape.
func (h *BookingHandler) ClearBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		utils.ResponseFail(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	deleted, err := h.service.ClearAllBookings(r.Context())
	if err != nil {
		h.fail(w, err, "clear bookings")
		return
	}

	h.log.Warn("Bookings cleared by admin", zap.Int64("deleted", deleted))
	utils.ResponseOK(w, utils.OKResponse{Message: "All bookings cleared"})
}

func (h *BookingHandler) fail(w http.ResponseWriter, err error, operation string) {
	code, msg := bookingFailure(err)
	if code >= http.StatusInternalServerError {
		h.log.Error(operation+" failed", zap.Error(err))
	} else {
		h.log.Info(operation+" rejected", zap.Error(err))
	}
	utils.ResponseFail(w, code, msg)
}
