package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/unicef/hope-grievance/internal/models"
	"go.uber.org/zap"
)

const version = "1.0.0"

var startTime = time.Now()

// Pinger is satisfied by *pgxpool.Pool and by the redis ping adapter.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health check endpoints
type HealthHandler struct {
	db     Pinger
	cache  Pinger
	logger *zap.SugaredLogger
}

// NewHealthHandler creates a new health handler. cache may be nil.
func NewHealthHandler(db, cache Pinger, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, logger: logger}
}

// Check handles GET /api/v1/health (liveness check)
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: version,
		Uptime:  time.Since(startTime).String(),
	})
}

// Ready handles GET /api/v1/health/ready (readiness check). The cache is
// optional and only reported.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:   "ready",
		Version:  version,
		Uptime:   time.Since(startTime).String(),
		Database: "connected",
		Cache:    "disabled",
	}

	if h.cache != nil {
		status.Cache = "connected"
		if err := h.cache.Ping(r.Context()); err != nil {
			h.logger.Warnw("Cache ping failed", "error", err)
			status.Cache = "disconnected"
		}
	}

	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warnw("Database ping failed", "error", err)
		status.Status = "not ready"
		status.Database = "disconnected"
		status.Uptime = ""
		respondJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	respondJSON(w, http.StatusOK, status)
}
