package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/services"
	"go.uber.org/zap"
)

// OpenSessionRequest opens an edit session for ticketId, or a create
// session when ticketId is empty.
type OpenSessionRequest struct {
	TicketID string `json:"ticketId"`
	services.CreateRequest
}

// SessionHandler handles edit session endpoints
type SessionHandler struct {
	svc    *services.EditSessionService
	logger *zap.SugaredLogger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc *services.EditSessionService, logger *zap.SugaredLogger) *SessionHandler {
	return &SessionHandler{svc: svc, logger: logger}
}

// Routes mounts the session endpoints.
func (h *SessionHandler) Routes(r chi.Router) {
	r.Post("/", h.Open)
	r.Route("/{sessionId}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.UpdateDetails)
		r.Delete("/", h.Cancel)
		r.Put("/fields", h.SetField)
		r.Delete("/fields", h.RemoveField)
		r.Post("/submit", h.Submit)
		r.Route("/collections/{kind}", func(r chi.Router) {
			r.Post("/", h.collection(services.ActionAdd))
			r.Put("/{itemId}", h.collection(services.ActionCommitEdit))
			r.Delete("/{itemId}", h.collection(services.ActionRemove))
			r.Post("/{itemId}/edit", h.collection(services.ActionStartEdit))
			r.Delete("/{itemId}/edit", h.collection(services.ActionCancelEdit))
			r.Post("/{itemId}/restore", h.collection(services.ActionRestore))
		})
	})
}

// Open handles POST /api/v1/sessions
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		view *services.SessionView
		err  error
	)
	switch {
	case req.TicketID != "":
		id, perr := uuid.Parse(req.TicketID)
		if perr != nil {
			respondError(w, http.StatusBadRequest, "Invalid ticket id")
			return
		}
		view, err = h.svc.OpenEdit(r.Context(), id, a)
	case req.Category != "":
		view, err = h.svc.OpenCreate(r.Context(), req.CreateRequest, a)
	default:
		respondError(w, http.StatusBadRequest, "Missing required fields: ticketId or category")
		return
	}
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, view)
}

// Get handles GET /api/v1/sessions/{sessionId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Get(chi.URLParam(r, "sessionId"), a)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// UpdateDetails handles PATCH /api/v1/sessions/{sessionId}
func (h *SessionHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var patch services.DetailsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := h.svc.UpdateDetails(chi.URLParam(r, "sessionId"), a, patch)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Cancel handles DELETE /api/v1/sessions/{sessionId}
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Cancel(chi.URLParam(r, "sessionId"), a); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetField handles PUT /api/v1/sessions/{sessionId}/fields
func (h *SessionHandler) SetField(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	edit, ok := decodeFieldEdit(w, r)
	if !ok {
		return
	}
	view, err := h.svc.SetField(chi.URLParam(r, "sessionId"), a, edit)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// RemoveField handles DELETE /api/v1/sessions/{sessionId}/fields
func (h *SessionHandler) RemoveField(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	edit, ok := decodeFieldEdit(w, r)
	if !ok {
		return
	}
	view, err := h.svc.RemoveField(chi.URLParam(r, "sessionId"), a, edit.FieldName, edit.IsFlexField)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Submit handles POST /api/v1/sessions/{sessionId}/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	ticketID, err := h.svc.Submit(r.Context(), chi.URLParam(r, "sessionId"), a)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticketId": ticketID,
		"status":   "submitted",
	})
}

func (h *SessionHandler) collection(action services.CollectionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := actor(w, r)
		if !ok {
			return
		}

		op := services.CollectionOp{
			Kind:   chi.URLParam(r, "kind"),
			Action: action,
			ItemID: chi.URLParam(r, "itemId"),
		}
		if action == services.ActionAdd || action == services.ActionCommitEdit {
			var body json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			op.Payload = body
		}

		res, err := h.svc.ApplyCollection(chi.URLParam(r, "sessionId"), a, op)
		if err != nil {
			respondServiceError(w, h.logger, err)
			return
		}

		status := http.StatusOK
		if action == services.ActionAdd {
			status = http.StatusCreated
		}
		respondJSON(w, status, res)
	}
}

func decodeFieldEdit(w http.ResponseWriter, r *http.Request) (models.FieldEdit, bool) {
	var raw struct {
		FieldName   string          `json:"fieldName"`
		FieldValue  json.RawMessage `json:"fieldValue"`
		IsFlexField bool            `json:"isFlexField"`
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw.FieldName == "" {
		respondError(w, http.StatusBadRequest, "Missing required field: fieldName")
		return models.FieldEdit{}, false
	}

	edit := models.FieldEdit{FieldName: raw.FieldName, IsFlexField: raw.IsFlexField}
	if len(raw.FieldValue) > 0 {
		v, err := models.DecodeAny(raw.FieldValue)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid fieldValue")
			return models.FieldEdit{}, false
		}
		edit.FieldValue = v
	}
	return edit, true
}
