package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unicef/hope-grievance/internal/fields"
	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/present"
	"go.uber.org/zap"
)

// AttributeProvider lists the field attributes of a scope.
type AttributeProvider interface {
	Attributes(ctx context.Context, scope models.SchemaScope) ([]models.FieldAttribute, error)
}

// ClassifiedAttribute is an attribute with the input kind a client renders.
type ClassifiedAttribute struct {
	models.FieldAttribute
	Kind        fields.Kind         `json:"kind"`
	BoolOptions []fields.BoolOption `json:"boolOptions,omitempty"`
}

// PresentRequest asks for the display form of a stored value.
type PresentRequest struct {
	Scope       models.SchemaScope `json:"scope"`
	Field       string             `json:"field"`
	Value       json.RawMessage    `json:"value"`
	MultiSelect bool               `json:"multiSelect"`
}

// SchemaHandler serves field schemas and value presentation.
type SchemaHandler struct {
	svc    AttributeProvider
	logger *zap.SugaredLogger
}

// NewSchemaHandler creates a new schema handler
func NewSchemaHandler(svc AttributeProvider, logger *zap.SugaredLogger) *SchemaHandler {
	return &SchemaHandler{svc: svc, logger: logger}
}

// Get handles GET /api/v1/schema/{scope}
func (h *SchemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope := models.SchemaScope(chi.URLParam(r, "scope"))
	if !scope.Valid() {
		respondError(w, http.StatusBadRequest, "Unknown schema scope")
		return
	}

	attrs, err := h.svc.Attributes(r.Context(), scope)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	out := make([]ClassifiedAttribute, 0, len(attrs))
	for _, a := range attrs {
		c := ClassifiedAttribute{FieldAttribute: a, Kind: fields.Classify(a)}
		if c.Kind == fields.KindBoolean {
			c.BoolOptions = fields.BoolOptions(a.Required)
		}
		out = append(out, c)
	}
	respondJSON(w, http.StatusOK, out)
}

// Present handles POST /api/v1/present
func (h *SchemaHandler) Present(w http.ResponseWriter, r *http.Request) {
	var req PresentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Scope.Valid() || req.Field == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields: scope, field")
		return
	}

	attrs, err := h.svc.Attributes(r.Context(), req.Scope)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	attr, ok := fields.NewSchema(attrs).Attribute(req.Field)
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown field")
		return
	}

	var value any
	if len(req.Value) > 0 {
		if value, err = models.DecodeAny(req.Value); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid value")
			return
		}
	}

	var opts []fields.Option
	if req.MultiSelect {
		opts = append(opts, fields.WithMultiSelect())
	}
	respondJSON(w, http.StatusOK, present.Present(attr, value, opts...))
}
