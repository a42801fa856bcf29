package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/beaesthetic/analytics/internal/infrastructure/observability"
)

// RequestIDHeader carries the short request id back to the caller
const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware logs request start and completion under a short request id
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()[:8]

		ctx := observability.WithRequestID(r.Context(), requestID)
		logger := observability.LoggerFromContext(ctx)

		event := logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path)
		if r.URL.RawQuery != "" {
			event = event.Str("query", r.URL.RawQuery)
		}
		event.Msg("Request started")

		w.Header().Set(RequestIDHeader, requestID)

		// Create a response writer wrapper to capture status code
		rw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r.WithContext(ctx))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status_code", rw.statusCode).
			Float64("duration_ms", float64(time.Since(start).Microseconds())/1000).
			Msg("Request completed")
	})
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *loggingResponseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
