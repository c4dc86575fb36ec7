package wire

import (
	"bus-tracker/internal/adaptor"
	"bus-tracker/pkg/middleware"
	"bus-tracker/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireLocation(
	r chi.Router,
	locationHandler *adaptor.LocationHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Get("/location/latest", locationHandler.Latest)

	// tracker device ingest, guarded when TRACKER_DEVICE_KEY is set
	r.With(middleware.DeviceKey(config.Tracker.DeviceKey, log)).
		Post("/location", locationHandler.Record)
}
