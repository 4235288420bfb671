// Package handlers contains HTTP request handlers for the grievance API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/unicef/hope-grievance/internal/middleware"
	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/normalize"
	"github.com/unicef/hope-grievance/internal/reconcile"
	"github.com/unicef/hope-grievance/internal/services"
	"go.uber.org/zap"
)

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and core errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	var (
		validationErr *services.ValidationError
		transportErr  *services.TransportError
		mismatchErr   *normalize.SchemaMismatchError
	)

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":       "Validation failed",
			"fieldErrors": validationErr.Errors,
		})
	case errors.As(err, &transportErr):
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":    "Submit failed",
			"messages": transportErr.Messages,
		})
	case errors.As(err, &mismatchErr):
		logger.Warnw("Ticket data does not match its workflow", "path", mismatchErr.Path, "error", err)
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "Ticket data does not match its workflow",
			"path":  mismatchErr.Path,
		})
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrTicketNotFound),
		errors.Is(err, services.ErrUnknownCollection),
		errors.Is(err, reconcile.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSubmitInFlight),
		errors.Is(err, services.ErrNoCollections),
		errors.Is(err, services.ErrFieldsNotEditable),
		errors.Is(err, reconcile.ErrRemoved),
		errors.Is(err, reconcile.ErrNotRemoved),
		errors.Is(err, reconcile.ErrNotEditing),
		errors.Is(err, reconcile.ErrDuplicate):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidPayload),
		errors.Is(err, services.ErrInvalidScope):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Errorw("Request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// actor returns the authenticated actor or writes a 401.
func actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
	}
	return a, ok
}
