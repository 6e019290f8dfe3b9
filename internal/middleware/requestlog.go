package middleware

import (
	"net/http"
	"time"

	"podscribe/internal/logger"
)

// RequestLogger logs one line per admin request.
func RequestLogger(lg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			lg.WithRequest(r).WithField("duration_ms", time.Since(start).Milliseconds()).Info("request handled")
		})
	}
}
