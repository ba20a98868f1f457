package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nicolelin19/mealmax/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthDependencies reports liveness and store connectivity.
type HealthDependencies interface {
	Health(ctx context.Context) error
	DBCheck(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps HealthDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleHealth handles GET /health.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Health(r.Context()); err != nil {
		fail(w, fmt.Errorf("%w: %w", ErrUnhealthy, err))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "health": "healthy"})
}

// HandleDBCheck handles GET /db-check.
func (h *HealthHandler) HandleDBCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DBCheck(r.Context()); err != nil {
		fail(w, fmt.Errorf("%w: database: %w", ErrUnhealthy, err))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"status": "success", "database_status": "healthy"})
}

// MetricsHandler serves the custom Prometheus registry.
func (h *HealthHandler) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
