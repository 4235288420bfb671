// Package grievance binds every (category, issueType) workflow to its
// editor view, snapshot normalizer and payload builder through a single
// dispatch table, so the three can never disagree about a ticket.
package grievance

import (
	"github.com/unicef/hope-grievance/internal/dispatch"
	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/normalize"
	"github.com/unicef/hope-grievance/internal/payload"
)

// View names the sub-editor a client shows for a ticket.
type View string

const (
	ViewGeneric            View = "generic"
	ViewFeedback           View = "feedback"
	ViewReferral           View = "referral"
	ViewGrievanceComplaint View = "grievance-complaint"
	ViewSensitiveGrievance View = "sensitive-grievance"
	ViewAddIndividual      View = "add-individual"
	ViewEditIndividual     View = "edit-individual"
	ViewEditHousehold      View = "edit-household"
	ViewDeleteIndividual   View = "delete-individual"
)

// Workflow is everything that varies per ticket variant.
type Workflow struct {
	View      View
	Normalize normalize.Variant
	Build     payload.Func
}

// Registry is read-only after construction and safe to share.
type Registry struct {
	table *dispatch.Table[Workflow]
}

// NewRegistry builds the registry of supported grievance workflows.
func NewRegistry() *Registry {
	def := Workflow{View: ViewGeneric, Normalize: normalize.None, Build: payload.Default}

	t := dispatch.NewTable(def).
		Terminal(models.CategoryPositiveFeedback, Workflow{ViewFeedback, normalize.None, payload.PositiveFeedback}).
		Terminal(models.CategoryNegativeFeedback, Workflow{ViewFeedback, normalize.None, payload.NegativeFeedback}).
		Terminal(models.CategoryReferral, Workflow{ViewReferral, normalize.None, payload.Referral}).
		Terminal(models.CategoryGrievanceComplaint, Workflow{ViewGrievanceComplaint, normalize.None, payload.GrievanceComplaint}).
		SetParticipation(models.CategoryGrievanceComplaint, dispatch.IssueTypeAccepted).
		Terminal(models.CategorySensitiveGrievance, Workflow{ViewSensitiveGrievance, normalize.None, payload.SensitiveGrievance}).
		SetParticipation(models.CategorySensitiveGrievance, dispatch.IssueTypeAccepted).
		Branch(models.CategoryDataChange, models.IssueTypeAddIndividual, Workflow{ViewAddIndividual, normalize.AddIndividual, payload.AddIndividual}).
		Branch(models.CategoryDataChange, models.IssueTypeEditIndividual, Workflow{ViewEditIndividual, normalize.EditIndividual, payload.EditIndividual}).
		Branch(models.CategoryDataChange, models.IssueTypeEditHousehold, Workflow{ViewEditHousehold, normalize.EditHousehold, payload.EditHousehold}).
		Branch(models.CategoryDataChange, models.IssueTypeDeleteIndividual, Workflow{ViewDeleteIndividual, normalize.DeleteIndividual, payload.DeleteIndividual}).
		Freeze()

	return &Registry{table: t}
}

// Resolve returns the workflow for (c, it), falling back to the generic one.
func (r *Registry) Resolve(c models.Category, it models.IssueType) Workflow {
	return r.table.Resolve(c, it)
}

// Known reports whether (c, it) has a registered workflow.
func (r *Registry) Known(c models.Category, it models.IssueType) bool {
	_, ok := r.table.Lookup(c, it)
	return ok
}

// Key canonicalizes (c, it).
func (r *Registry) Key(c models.Category, it models.IssueType) dispatch.Key {
	return r.table.Key(c, it)
}

// Participation reports how c uses the issue type.
func (r *Registry) Participation(c models.Category) dispatch.Participation {
	return r.table.Participation(c)
}

// Keys lists every registered key.
func (r *Registry) Keys() []dispatch.Key {
	return r.table.Keys()
}

// Normalize derives the editable state of snap.
func (r *Registry) Normalize(n *normalize.Normalizer, snap *models.TicketSnapshot) (*models.FormState, error) {
	if snap == nil {
		return n.Normalize(nil, nil)
	}
	return n.Normalize(snap, r.Resolve(snap.Category, snap.IssueType).Normalize)
}

// Build assembles the mutation input for state. The workflow is chosen
// from the state's own category and issue type.
func (r *Registry) Build(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	return r.Resolve(state.Category, state.IssueType).Build(required, state)
}
