package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/unicef/hope-grievance/internal/caseconv"
	"github.com/unicef/hope-grievance/internal/fields"
	"github.com/unicef/hope-grievance/internal/grievance"
	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/normalize"
	"github.com/unicef/hope-grievance/internal/payload"
	"github.com/unicef/hope-grievance/internal/reconcile"
	"go.uber.org/zap"
)

// TicketSource is the ticket transport: snapshot on read, mutation on write.
type TicketSource interface {
	FetchSnapshot(ctx context.Context, ticketID uuid.UUID) (*models.TicketSnapshot, error)
	Submit(ctx context.Context, ticketID *uuid.UUID, actor models.Actor, input models.MutationInput) (uuid.UUID, error)
}

// SchemaProvider supplies read-only field schemas.
type SchemaProvider interface {
	Schema(ctx context.Context, scope models.SchemaScope) (*fields.Schema, error)
}

// ActivityRecorder records session events.
type ActivityRecorder interface {
	Log(ctx context.Context, entry *models.ActivityLogEntry) error
}

// CreateRequest opens a session for a ticket that does not exist yet.
type CreateRequest struct {
	Category   models.Category  `json:"category"`
	IssueType  models.IssueType `json:"issueType,omitempty"`
	Household  *models.Reference `json:"household,omitempty"`
	Individual *models.Reference `json:"individual,omitempty"`
}

// DetailsPatch updates the common ticket fields. Nil members are left alone.
type DetailsPatch struct {
	Description   *string   `json:"description"`
	AssignedTo    *string   `json:"assignedTo"`
	Language      *string   `json:"language"`
	Admin         *string   `json:"admin"`
	Area          *string   `json:"area"`
	Priority      *int      `json:"priority"`
	Urgency       *int      `json:"urgency"`
	Partner       *string   `json:"partner"`
	Comments      *string   `json:"comments"`
	Programme     *string   `json:"programme"`
	LinkedTickets *[]string `json:"linkedTickets"`
}

// SessionView is a consistent copy of a session for clients.
type SessionView struct {
	ID              string                                  `json:"id"`
	TicketID        *uuid.UUID                              `json:"ticketId,omitempty"`
	View            grievance.View                          `json:"view"`
	Key             string                                  `json:"key"`
	State           *models.FormState                       `json:"state"`
	Documents       []reconcile.Item[models.Document]       `json:"documents,omitempty"`
	Identities      []reconcile.Item[models.Identity]       `json:"identities,omitempty"`
	PaymentChannels []reconcile.Item[models.PaymentChannel] `json:"paymentChannels,omitempty"`
	Submitting      bool                                    `json:"submitting"`
}

// session owns one FormState. Its mutex guards every field below it.
type session struct {
	id       string
	ticketID *uuid.UUID
	actor    models.Actor
	workflow grievance.Workflow
	key      string

	individuals *fields.Schema
	households  *fields.Schema

	mu              sync.Mutex
	state           *models.FormState
	documents       *reconcile.Collection[models.Document]
	identities      *reconcile.Collection[models.Identity]
	paymentChannels *reconcile.Collection[models.PaymentChannel]
	submitting      bool
	touched         time.Time
}

// EditSessionService runs ticket edit and create sessions in memory.
// Closing or abandoning a session discards its state; nothing is persisted
// until submit.
type EditSessionService struct {
	tickets   TicketSource
	schemas   SchemaProvider
	activity  ActivityRecorder
	registry  *grievance.Registry
	validator Validator
	logger    *zap.SugaredLogger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewEditSessionService creates a session service. validator may be nil.
func NewEditSessionService(
	tickets TicketSource,
	schemas SchemaProvider,
	activity ActivityRecorder,
	registry *grievance.Registry,
	validator Validator,
	logger *zap.SugaredLogger,
) *EditSessionService {
	return &EditSessionService{
		tickets:   tickets,
		schemas:   schemas,
		activity:  activity,
		registry:  registry,
		validator: validator,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// OpenEdit fetches a ticket and starts an edit session on it.
func (s *EditSessionService) OpenEdit(ctx context.Context, ticketID uuid.UUID, actor models.Actor) (*SessionView, error) {
	snap, err := s.tickets.FetchSnapshot(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	individuals, households, err := s.loadSchemas(ctx)
	if err != nil {
		return nil, err
	}

	n := &normalize.Normalizer{Individuals: individuals, Households: households, Actor: &actor}
	state, err := s.registry.Normalize(n, snap)
	if err != nil {
		return nil, fmt.Errorf("normalize ticket %s: %w", ticketID, err)
	}

	sess := s.newSession(actor, snap.Category, snap.IssueType, state, individuals, households)
	sess.ticketID = &ticketID
	if sess.workflow.View == grievance.ViewEditIndividual {
		if err := sess.seedCollections(snap.Individual); err != nil {
			return nil, fmt.Errorf("seed collections of ticket %s: %w", ticketID, err)
		}
	}

	return s.register(ctx, sess), nil
}

// OpenCreate starts a session for a new ticket.
func (s *EditSessionService) OpenCreate(ctx context.Context, req CreateRequest, actor models.Actor) (*SessionView, error) {
	individuals, households, err := s.loadSchemas(ctx)
	if err != nil {
		return nil, err
	}

	n := &normalize.Normalizer{Individuals: individuals, Households: households, Actor: &actor}
	state, err := n.Normalize(&models.TicketSnapshot{
		Category:   req.Category,
		IssueType:  req.IssueType,
		Household:  req.Household,
		Individual: req.Individual,
	}, normalize.None)
	if err != nil {
		return nil, err
	}

	sess := s.newSession(actor, req.Category, req.IssueType, state, individuals, households)
	switch sess.workflow.View {
	case grievance.ViewAddIndividual:
		state.IndividualData = &models.FieldBucket{Fields: map[string]any{}, FlexFields: map[string]any{}}
	case grievance.ViewEditIndividual:
		if err := sess.seedCollections(req.Individual); err != nil {
			return nil, err
		}
	}

	return s.register(ctx, sess), nil
}

// Get returns the current view of a session.
func (s *EditSessionService) Get(id string, actor models.Actor) (*SessionView, error) {
	sess, err := s.lookup(id, actor)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touched = s.now()
	return sess.view(), nil
}

// Cancel discards a session.
func (s *EditSessionService) Cancel(id string, actor models.Actor) error {
	if _, err := s.lookup(id, actor); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// UpdateDetails applies a patch to the common ticket fields.
func (s *EditSessionService) UpdateDetails(id string, actor models.Actor, patch DetailsPatch) (*SessionView, error) {
	return s.mutate(id, actor, func(sess *session) error {
		st := sess.state
		setIf(&st.Description, patch.Description)
		setIf(&st.AssignedTo, patch.AssignedTo)
		setIf(&st.Language, patch.Language)
		setIf(&st.Admin, patch.Admin)
		setIf(&st.Area, patch.Area)
		setIf(&st.Priority, patch.Priority)
		setIf(&st.Urgency, patch.Urgency)
		setIf(&st.Partner, patch.Partner)
		setIf(&st.Comments, patch.Comments)
		setIf(&st.Programme, patch.Programme)
		if patch.LinkedTickets != nil {
			st.SelectedLinkedTickets = append([]string{}, (*patch.LinkedTickets)...)
		}
		return nil
	})
}

// SetField records a requested field value. Boolean fields have the empty
// sentinel coerced to nil.
func (s *EditSessionService) SetField(id string, actor models.Actor, edit models.FieldEdit) (*SessionView, error) {
	return s.mutate(id, actor, func(sess *session) error {
		st := sess.state
		switch sess.workflow.View {
		case grievance.ViewEditIndividual:
			edit.FieldValue = fields.CoerceValue(sess.individuals.Kind(edit.FieldName), edit.FieldValue)
			st.IndividualDataUpdateFields = models.SetFieldEdit(st.IndividualDataUpdateFields, edit)
		case grievance.ViewEditHousehold:
			edit.FieldValue = fields.CoerceValue(sess.households.Kind(edit.FieldName), edit.FieldValue)
			st.HouseholdDataUpdateFields = models.SetFieldEdit(st.HouseholdDataUpdateFields, edit)
		case grievance.ViewAddIndividual:
			v := fields.CoerceValue(sess.individuals.Kind(edit.FieldName), edit.FieldValue)
			if edit.IsFlexField {
				st.IndividualData.FlexFields[edit.FieldName] = v
			} else {
				st.IndividualData.Fields[caseconv.CamelCase(edit.FieldName)] = v
			}
		default:
			return ErrFieldsNotEditable
		}
		return nil
	})
}

// RemoveField drops a requested field change.
func (s *EditSessionService) RemoveField(id string, actor models.Actor, name string, isFlex bool) (*SessionView, error) {
	return s.mutate(id, actor, func(sess *session) error {
		st := sess.state
		drop := func(edits []models.FieldEdit) []models.FieldEdit {
			out := edits[:0]
			for _, e := range edits {
				if e.FieldName != name || e.IsFlexField != isFlex {
					out = append(out, e)
				}
			}
			return out
		}
		switch sess.workflow.View {
		case grievance.ViewEditIndividual:
			st.IndividualDataUpdateFields = drop(st.IndividualDataUpdateFields)
		case grievance.ViewEditHousehold:
			st.HouseholdDataUpdateFields = drop(st.HouseholdDataUpdateFields)
		case grievance.ViewAddIndividual:
			if isFlex {
				delete(st.IndividualData.FlexFields, name)
			} else {
				delete(st.IndividualData.Fields, caseconv.CamelCase(name))
			}
		default:
			return ErrFieldsNotEditable
		}
		return nil
	})
}

// ApplyCollection runs one reconciler operation on a session collection.
func (s *EditSessionService) ApplyCollection(id string, actor models.Actor, op CollectionOp) (*CollectionResult, error) {
	sess, err := s.lookup(id, actor)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.submitting {
		return nil, ErrSubmitInFlight
	}

	c, err := sess.collection(op.Kind)
	if err != nil {
		return nil, err
	}
	res, err := c.apply(op)
	if err != nil {
		return nil, err
	}
	sess.syncCollections()
	sess.touched = s.now()
	res.Session = *sess.view()
	return &res, nil
}

// Submit validates the session, builds the mutation through the session's
// workflow and hands it to the transport. On success the session ends; on
// any failure its state is kept for another attempt.
func (s *EditSessionService) Submit(ctx context.Context, id string, actor models.Actor) (uuid.UUID, error) {
	sess, err := s.lookup(id, actor)
	if err != nil {
		return uuid.Nil, err
	}

	sess.mu.Lock()
	if sess.submitting {
		sess.mu.Unlock()
		return uuid.Nil, ErrSubmitInFlight
	}
	sess.syncCollections()
	if s.validator != nil {
		if errs := s.validator.Validate(sess.state, sess.individuals, sess.households); len(errs) > 0 {
			sess.state.FieldErrors = errs
			sess.mu.Unlock()
			return uuid.Nil, &ValidationError{Errors: errs}
		}
	}
	sess.state.FieldErrors = nil
	input := sess.workflow.Build(payload.Required(sess.state), sess.state.Clone())
	sess.submitting = true
	sess.mu.Unlock()

	ticketID, err := s.tickets.Submit(ctx, sess.ticketID, actor, input)

	sess.mu.Lock()
	sess.submitting = false
	sess.touched = s.now()
	sess.mu.Unlock()

	if err != nil {
		s.logger.Warnw("Submit failed", "session", id, "key", sess.key, "error", err)
		s.record(ctx, sess, ActivitySubmitFailed, err.Error())
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			return uuid.Nil, transportErr
		}
		return uuid.Nil, newTransportError(err)
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	if sess.ticketID == nil {
		sess.ticketID = &ticketID
	}
	s.record(ctx, sess, ActivitySubmitted, "Ticket changes submitted")
	s.logger.Infow("Session submitted", "session", id, "ticket_id", ticketID, "key", sess.key)
	return ticketID, nil
}

// Sweep discards sessions idle for longer than idle and returns how many
// were dropped. Sessions with a submit in flight are kept.
func (s *EditSessionService) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		stale := !sess.submitting && sess.touched.Before(cutoff)
		sess.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Count returns the number of open sessions.
func (s *EditSessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *EditSessionService) loadSchemas(ctx context.Context) (*fields.Schema, *fields.Schema, error) {
	individuals, err := s.schemas.Schema(ctx, models.ScopeIndividual)
	if err != nil {
		return nil, nil, err
	}
	households, err := s.schemas.Schema(ctx, models.ScopeHousehold)
	if err != nil {
		return nil, nil, err
	}
	return individuals, households, nil
}

func (s *EditSessionService) newSession(actor models.Actor, c models.Category, it models.IssueType, state *models.FormState, individuals, households *fields.Schema) *session {
	return &session{
		id:          uuid.NewString(),
		actor:       actor,
		workflow:    s.registry.Resolve(c, it),
		key:         s.registry.Key(c, it).String(),
		individuals: individuals,
		households:  households,
		state:       state,
		touched:     s.now(),
	}
}

func (s *EditSessionService) register(ctx context.Context, sess *session) *SessionView {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.record(ctx, sess, ActivitySessionOpened, fmt.Sprintf("Edit session opened (%s)", sess.workflow.View))
	s.logger.Infow("Session opened",
		"session", sess.id,
		"key", sess.key,
		"view", sess.workflow.View,
		"actor", sess.actor.ID,
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view()
}

func (s *EditSessionService) lookup(id string, actor models.Actor) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || sess.actor.ID != actor.ID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *EditSessionService) mutate(id string, actor models.Actor, fn func(*session) error) (*SessionView, error) {
	sess, err := s.lookup(id, actor)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.submitting {
		return nil, ErrSubmitInFlight
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.touched = s.now()
	return sess.view(), nil
}

func (s *EditSessionService) record(ctx context.Context, sess *session, kind, desc string) {
	if s.activity == nil {
		return
	}
	err := s.activity.Log(ctx, &models.ActivityLogEntry{
		TicketID:          sess.ticketID,
		SessionID:         sess.id,
		ActivityType:      kind,
		ActionDescription: desc,
		Actor:             sess.actor.ID,
		Metadata:          sess.key,
	})
	if err != nil {
		s.logger.Warnw("Failed to record activity", "session", sess.id, "type", kind, "error", err)
	}
}

// seedCollections must run before the session is registered.
func (sess *session) seedCollections(individual *models.Reference) error {
	st := sess.state
	var current models.Reference
	if individual != nil {
		current = *individual
	}

	sess.documents = reconcile.New[models.Document]()
	if err := seedCollection(sess.documents, current.Documents,
		st.IndividualDataUpdateFieldsDocuments, st.IndividualDataUpdateDocumentsToEdit, st.IndividualDataUpdateDocumentsToRemove,
		documentID, func(id string) models.Document { return models.Document{ID: id} }, "documents"); err != nil {
		return err
	}

	sess.identities = reconcile.New[models.Identity]()
	if err := seedCollection(sess.identities, current.Identities,
		st.IndividualDataUpdateFieldsIdentities, st.IndividualDataUpdateIdentitiesToEdit, st.IndividualDataUpdateIdentitiesToRemove,
		identityID, func(id string) models.Identity { return models.Identity{ID: id} }, "identities"); err != nil {
		return err
	}

	sess.paymentChannels = reconcile.New[models.PaymentChannel]()
	if err := seedCollection(sess.paymentChannels, current.PaymentChannels,
		st.IndividualDataUpdateFieldsPaymentChannels, st.IndividualDataUpdatePaymentChannelsToEdit, st.IndividualDataUpdatePaymentChannelsToRemove,
		paymentChannelID, func(id string) models.PaymentChannel { return models.PaymentChannel{ID: id} }, "payment_channels"); err != nil {
		return err
	}

	sess.syncCollections()
	return nil
}

// syncCollections projects the reconciled collections into the form state.
func (sess *session) syncCollections() {
	if sess.documents == nil {
		return
	}
	st := sess.state
	st.IndividualDataUpdateFieldsDocuments = sess.documents.Added()
	st.IndividualDataUpdateDocumentsToRemove = sess.documents.ToRemoveIDs()
	st.IndividualDataUpdateDocumentsToEdit = sess.documents.Edited()
	st.IndividualDataUpdateFieldsIdentities = sess.identities.Added()
	st.IndividualDataUpdateIdentitiesToRemove = sess.identities.ToRemoveIDs()
	st.IndividualDataUpdateIdentitiesToEdit = sess.identities.Edited()
	st.IndividualDataUpdateFieldsPaymentChannels = sess.paymentChannels.Added()
	st.IndividualDataUpdatePaymentChannelsToRemove = sess.paymentChannels.ToRemoveIDs()
	st.IndividualDataUpdatePaymentChannelsToEdit = sess.paymentChannels.Edited()
}

func (sess *session) collection(kind string) (collection, error) {
	if sess.documents == nil {
		return nil, ErrNoCollections
	}
	switch kind {
	case CollectionDocuments:
		return typedCollection[models.Document]{sess.documents}, nil
	case CollectionIdentities:
		return typedCollection[models.Identity]{sess.identities}, nil
	case CollectionPaymentChannels:
		return typedCollection[models.PaymentChannel]{sess.paymentChannels}, nil
	}
	return nil, ErrUnknownCollection
}

// view must be called with sess.mu held.
func (sess *session) view() *SessionView {
	v := &SessionView{
		ID:         sess.id,
		TicketID:   sess.ticketID,
		View:       sess.workflow.View,
		Key:        sess.key,
		State:      sess.state.Clone(),
		Submitting: sess.submitting,
	}
	if sess.documents != nil {
		v.Documents = sess.documents.Items()
		v.Identities = sess.identities.Items()
		v.PaymentChannels = sess.paymentChannels.Items()
	}
	return v
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
