package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"datagraph-backend/internal/middleware"
	"datagraph-backend/pkg/api"
)

const readinessTimeout = 3 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the root banner and the health endpoints.
type HealthHandler struct {
	store  Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger.Named("health")}
}

// Banner handles GET on the path prefix.
func (h *HealthHandler) Banner(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, "Server works!")
}

// Check handles GET /health requests
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// Ready handles GET /ready by checking Neo4j connectivity.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed",
			zap.String("requestID", middleware.GetRequestIDFromRequest(r)),
			zap.Error(err),
		)
		api.Success(w, http.StatusServiceUnavailable, api.HealthResponse{
			Status: "unavailable",
			Checks: map[string]string{"neo4j": "unreachable"},
		})
		return
	}

	api.Success(w, http.StatusOK, api.HealthResponse{
		Status: "ready",
		Checks: map[string]string{"neo4j": "ok"},
	})
}
