package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/unicef/hope-grievance/internal/models"
	"go.uber.org/zap"
)

// ActivityReader is the read side of the activity log.
type ActivityReader interface {
	FetchByTicket(ctx context.Context, ticketID string, limit int) ([]models.ActivityLog, error)
	FetchRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

// ActivityHandler handles activity log endpoints
type ActivityHandler struct {
	svc    ActivityReader
	logger *zap.SugaredLogger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(svc ActivityReader, logger *zap.SugaredLogger) *ActivityHandler {
	return &ActivityHandler{svc: svc, logger: logger}
}

// ByTicket handles GET /api/v1/activity/ticket/{ticketId}
func (h *ActivityHandler) ByTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")
	if _, err := uuid.Parse(ticketID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	logs, err := h.svc.FetchByTicket(r.Context(), ticketID, limitParam(r, 50))
	if err != nil {
		h.logger.Errorw("Failed to fetch activity", "ticket_id", ticketID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch logs")
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// Recent handles GET /api/v1/activity/recent
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.FetchRecent(r.Context(), limitParam(r, 100))
	if err != nil {
		h.logger.Errorw("Failed to fetch recent activity", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch recent activity")
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// limitParam reads ?limit=, clamped to [1, 500].
func limitParam(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		return def
	}
	if n > 500 {
		return 500
	}
	return n
}
