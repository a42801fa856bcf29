package handlers

import (
	"net/http"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/query/metrics"
	queryservices "github.com/beaesthetic/analytics/internal/query/services"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

// AnalyticsHandler handles the /analytics endpoints
type AnalyticsHandler struct {
	service  queryservices.Analytics
	registry *metrics.Registry
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service queryservices.Analytics, registry *metrics.Registry) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, registry: registry}
}

// GetTimeseries handles GET /analytics/timeseries
func (h *AnalyticsHandler) GetTimeseries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	granularity, err := entities.ParseGranularity(q.Get("granularity"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	requested, err := parseMetrics(q, h.registry)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	start, end, err := parseDateRange(q)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	loc, err := parseLocation(q)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	series, err := h.service.GetTimeseries(r.Context(), granularity, requested, start, end, loc)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, series)
}

// GetSummary handles GET /analytics/summary
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	raw := q.Get("metric")
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "metric is required")
		return
	}
	metric, err := h.registry.ParseMetric(raw)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	start, end, err := parseDateRange(q)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	summary, err := h.service.GetSummary(r.Context(), metric, start, end)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GetServicesBreakdown handles GET /analytics/services
func (h *AnalyticsHandler) GetServicesBreakdown(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r.URL.Query())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	breakdown, err := h.service.GetServicesBreakdown(r.Context(), start, end)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, breakdown)
}

// GetMonthOverMonth handles GET /analytics/mom
func (h *AnalyticsHandler) GetMonthOverMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year, err := requireInt(q, "year")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	month, err := requireInt(q, "month")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.ComputeMoM(r.Context(), year, month)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetYearOverYear handles GET /analytics/yoy
func (h *AnalyticsHandler) GetYearOverYear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year, err := requireInt(q, "year")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var month *int
	m, ok, err := parseInt(q, "month")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if ok {
		month = &m
	}

	result, err := h.service.ComputeYoY(r.Context(), year, month)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ListMetrics handles GET /analytics/metrics
func (h *AnalyticsHandler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	type metricInfo struct {
		Metric     entities.Metric `json:"metric"`
		Kind       string          `json:"kind"`
		Timeseries bool            `json:"timeseries"`
	}

	registered := h.registry.Metrics()
	out := make([]metricInfo, 0, len(registered))
	for _, m := range registered {
		def, err := h.registry.Lookup(m)
		if err != nil {
			respondWithAppError(w, r, apperrors.NewInternalError("registry out of sync", err))
			return
		}
		out = append(out, metricInfo{Metric: m, Kind: def.Kind.String(), Timeseries: def.SupportsTimeseries()})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": out,
	})
}
