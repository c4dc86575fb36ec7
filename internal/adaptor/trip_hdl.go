package adaptor

import (
	"encoding/json"
	"net/http"

	"bus-tracker/internal/dto/request"
	"bus-tracker/internal/dto/response"
	"bus-tracker/internal/usecase"
	"bus-tracker/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TripHandler struct {
	service usecase.TripService
	log     *zap.Logger
}

func NewTripHandler(service usecase.TripService, log *zap.Logger) *TripHandler {
	return &TripHandler{
		service: service,
		log:     log.With(zap.String("handler", "trip")),
	}
}

// ListTrips handles GET /trips. The default trips are seeded on first use.
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.EnsureSeedTrips(r.Context()); err != nil {
		handleServiceError(w, h.log, err, "seed trips")
		return
	}

	trips := []response.TripResponse{}
	for trip, err := range h.service.ListTrips(r.Context()) {
		if err != nil {
			handleServiceError(w, h.log, err, "list trips")
			return
		}
		trips = append(trips, response.TripToResponse(trip))
	}

	utils.ResponseSuccess(w, "Trips retrieved", trips)
}

// GetTrip handles GET /trips/{id}
func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := h.service.GetTrip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get trip")
		return
	}

	utils.ResponseSuccess(w, "Trip retrieved", response.TripToResponse(trip))
}

// CreateTrip handles POST /admin/trips (admin)
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	trip, err := h.service.CreateTrip(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create trip")
		return
	}

	utils.ResponseCreated(w, "Trip created", response.TripToResponse(trip))
}

// SetActive handles PATCH /admin/trips/{id}/active (admin)
func (h *TripHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req request.SetTripActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	trip, err := h.service.SetActive(r.Context(), chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		handleServiceError(w, h.log, err, "set trip active")
		return
	}

	utils.ResponseSuccess(w, "Trip updated", response.TripToResponse(trip))
}

// DeleteTrip handles DELETE /admin/trips/{id} (admin)
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTrip(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete trip")
		return
	}

	utils.ResponseSuccess(w, "Trip deleted", nil)
}
