package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"bus-tracker/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimit is a fixed-window limiter kept in Redis, keyed by the caller's
// user id or, for anonymous requests, the client IP. It fails open: without
// Redis, or when Redis errors, requests pass through.
func RateLimit(config utils.RateLimitConfig, rdb *redis.Client, scope string, logger *zap.Logger) func(http.Handler) http.Handler {
	if !config.Enabled || rdb == nil || config.Limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	window := config.Window
	if window <= 0 {
		window = time.Minute
	}
	prefix := config.Prefix
	if prefix == "" {
		prefix = "rl"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			bucket := now.Truncate(window)
			key := fmt.Sprintf("%s:%s:%s:%d", prefix, scope, callerKey(r), bucket.Unix())

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				logger.Warn("Rate limiter unavailable", zap.Error(err), zap.String("key", key))
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := rdb.Expire(r.Context(), key, window).Err(); err != nil {
					// the counter still works for this window; only the key outlives it
					logger.Warn("Failed to set rate limit window", zap.Error(err), zap.String("key", key))
				}
			}

			remaining := int64(config.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(config.Limit) {
				retry := int(bucket.Add(window).Sub(now).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				logger.Info("Rate limit exceeded", zap.String("key", key), zap.Int64("count", count))
				utils.ResponseFail(w, http.StatusTooManyRequests, "Too many requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
