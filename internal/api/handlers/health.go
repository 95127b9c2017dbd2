package handlers

import (
	"net/http"

	"github.com/coogplanner/backend/internal/catalog"
	"github.com/coogplanner/backend/pkg/database"
	"github.com/coogplanner/backend/pkg/redis"
)

// HealthHandler reports service health plus the loader's cache counters, so
// a silently degraded cache or data source is visible to operators.
type HealthHandler struct {
	db     *database.DB
	loader *catalog.Loader
	cache  *redis.Cache
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, loader *catalog.Loader, cache *redis.Cache) *HealthHandler {
	return &HealthHandler{db: db, loader: loader, cache: cache}
}

// Get returns service health
// GET /health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "ok"
	if err := h.db.Ping(r.Context()); err != nil {
		status = "degraded"
		dbStatus = err.Error()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"service":      "coog-planner-api",
		"database":     dbStatus,
		"loader":       h.loader.Stats(),
		"cache_errors": h.cache.Errors(),
	})
}
