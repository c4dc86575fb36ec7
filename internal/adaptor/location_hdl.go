package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"bus-tracker/internal/dto/request"
	"bus-tracker/internal/dto/response"
	"bus-tracker/internal/usecase"
	"bus-tracker/pkg/utils"

	"go.uber.org/zap"
)

type LocationHandler struct {
	service usecase.LocationService
	log     *zap.Logger
}

func NewLocationHandler(service usecase.LocationService, log *zap.Logger) *LocationHandler {
	return &LocationHandler{
		service: service,
		log:     log.With(zap.String("handler", "location")),
	}
}

// Record handles POST /location from the tracker device
func (h *LocationHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req request.RecordLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.status(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.Lat == nil || req.Lng == nil {
		h.status(w, http.StatusBadRequest, "Missing parameters")
		return
	}

	if _, err := h.service.Record(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidLocation):
			h.status(w, http.StatusBadRequest, "Invalid GPS data")
		case errors.Is(err, usecase.ErrValidation):
			h.status(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("Failed to record location", zap.Error(err))
			h.status(w, http.StatusServiceUnavailable, "Location storage unavailable")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, response.StatusResponse{Status: "success"})
}

// Latest handles GET /location/latest; lat and lng are null before the first fix
func (h *LocationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	location, err := h.service.Latest(r.Context())
	if err != nil {
		h.log.Error("Failed to read latest location", zap.Error(err))
		h.status(w, http.StatusServiceUnavailable, "Location storage unavailable")
		return
	}

	resp := response.LatestLocationResponse{}
	if location != nil {
		resp.Lat = &location.Lat
		resp.Lng = &location.Lng
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *LocationHandler) status(w http.ResponseWriter, code int, message string) {
	utils.WriteJSON(w, code, response.StatusResponse{Status: "error", Message: message})
}
