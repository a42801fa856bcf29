package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beaesthetic/analytics/internal/infrastructure/observability"
)

func TestLoggingMiddleware_SetsRequestID(t *testing.T) {
	var seen string
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analytics/mom?year=2024&month=3", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Len(t, seen, 8)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("wildcard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://dashboard.example")
		w := httptest.NewRecorder()

		CORSMiddleware(nil)(next).ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("explicit origin list", func(t *testing.T) {
		mw := CORSMiddleware([]string{"https://dashboard.example"})

		allowed := httptest.NewRequest(http.MethodGet, "/health", nil)
		allowed.Header.Set("Origin", "https://dashboard.example")
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, allowed)
		assert.Equal(t, "https://dashboard.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))

		denied := httptest.NewRequest(http.MethodGet, "/health", nil)
		denied.Header.Set("Origin", "https://evil.example")
		w = httptest.NewRecorder()
		mw(next).ServeHTTP(w, denied)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short circuits", func(t *testing.T) {
		called := false
		handler := CORSMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/analytics/summary", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, called)
	})
}

func TestObservabilityMiddleware_PassesStatusThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /analytics/mom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	handler := ObservabilityMiddleware(nil)(mux)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analytics/mom", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
