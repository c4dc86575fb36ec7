package middleware

import (
	"crypto/subtle"
	"net/http"

	"bus-tracker/internal/dto/response"
	"bus-tracker/pkg/utils"

	"go.uber.org/zap"
)

const DeviceKeyHeader = "X-Device-Key"

// DeviceKey guards the tracker ingest endpoint. An empty key disables it.
func DeviceKey(key string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(DeviceKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				logger.Warn("Rejected location update with bad device key", zap.String("ip", r.RemoteAddr))
				utils.WriteJSON(w, http.StatusUnauthorized, response.StatusResponse{
					Status:  "error",
					Message: "Invalid device key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
