package routes

import (
	"net/http"

	"github.com/beaesthetic/analytics/internal/api/handlers"
	"github.com/beaesthetic/analytics/internal/api/middleware"
	"github.com/beaesthetic/analytics/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	analyticsHandler *handlers.AnalyticsHandler
	insightsHandler  *handlers.InsightsHandler
	healthHandler    *handlers.HealthHandler
	debugHandler     *handlers.DebugHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router. debugHandler may be nil.
func NewRouter(
	analyticsHandler *handlers.AnalyticsHandler,
	insightsHandler *handlers.InsightsHandler,
	healthHandler *handlers.HealthHandler,
	debugHandler *handlers.DebugHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		analyticsHandler: analyticsHandler,
		insightsHandler:  insightsHandler,
		healthHandler:    healthHandler,
		debugHandler:     debugHandler,
		allowedOrigins:   allowedOrigins,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Analytics endpoints
	r.mux.HandleFunc("GET /analytics/metrics", r.analyticsHandler.ListMetrics)
	r.mux.HandleFunc("GET /analytics/timeseries", r.analyticsHandler.GetTimeseries)
	r.mux.HandleFunc("GET /analytics/summary", r.analyticsHandler.GetSummary)
	r.mux.HandleFunc("GET /analytics/services", r.analyticsHandler.GetServicesBreakdown)
	r.mux.HandleFunc("GET /analytics/mom", r.analyticsHandler.GetMonthOverMonth)
	r.mux.HandleFunc("GET /analytics/yoy", r.analyticsHandler.GetYearOverYear)

	// Insights endpoints
	r.mux.HandleFunc("GET /insights/inactive-customers", r.insightsHandler.GetInactiveCustomers)

	if r.debugHandler != nil {
		r.mux.HandleFunc("GET /debug/cache", r.debugHandler.GetCacheStats)
	}

	// Observability wraps the mux directly so it sees the matched pattern.
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
