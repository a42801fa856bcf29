package handlers

import (
	"net/http"

	"github.com/beaesthetic/analytics/internal/adapters/cache"
)

// CacheStatsProvider exposes cache diagnostics
type CacheStatsProvider interface {
	Stats() cache.Stats
}

// DebugHandler serves diagnostics endpoints
type DebugHandler struct {
	cache CacheStatsProvider
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(cache CacheStatsProvider) *DebugHandler {
	return &DebugHandler{cache: cache}
}

// GetCacheStats handles GET /debug/cache
func (h *DebugHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.cache.Stats())
}
