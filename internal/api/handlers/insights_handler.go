package handlers

import (
	"context"
	"net/http"

	"github.com/beaesthetic/analytics/internal/domain/entities"
)

const defaultInactiveLimit = 50

// InactiveCustomerFinder computes the inactive customers insight
type InactiveCustomerFinder interface {
	GetInactiveCustomers(ctx context.Context, limit int) (*entities.InactiveCustomers, error)
}

// InsightsHandler handles the /insights endpoints
type InsightsHandler struct {
	service InactiveCustomerFinder
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(service InactiveCustomerFinder) *InsightsHandler {
	return &InsightsHandler{service: service}
}

// GetInactiveCustomers handles GET /insights/inactive-customers
func (h *InsightsHandler) GetInactiveCustomers(w http.ResponseWriter, r *http.Request) {
	limit, ok, err := parseInt(r.URL.Query(), "limit")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if !ok {
		limit = defaultInactiveLimit
	}

	result, err := h.service.GetInactiveCustomers(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
