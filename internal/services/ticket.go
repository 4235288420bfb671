package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/unicef/hope-grievance/internal/models"
	"go.uber.org/zap"
)

// TicketStore reads ticket snapshots and records submitted mutations
type TicketStore struct {
	db     Querier
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewTicketStore creates a new ticket store
func NewTicketStore(db Querier, logger *zap.SugaredLogger) *TicketStore {
	return &TicketStore{db: db, logger: logger, now: time.Now}
}

// FetchSnapshot loads the stored server view of a ticket
func (s *TicketStore) FetchSnapshot(ctx context.Context, ticketID uuid.UUID) (*models.TicketSnapshot, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT snapshot FROM grievance_tickets WHERE id = $1`, ticketID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch ticket %s: %w", ticketID, err)
	}

	var snap models.TicketSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode ticket %s: %w", ticketID, err)
	}
	if snap.ID == "" {
		snap.ID = ticketID.String()
	}
	return &snap, nil
}

// Submit records a mutation. A nil ticketID creates a new ticket. The
// returned id is the ticket the mutation applies to.
func (s *TicketStore) Submit(ctx context.Context, ticketID *uuid.UUID, actor models.Actor, input models.MutationInput) (uuid.UUID, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode mutation: %w", err)
	}

	kind := "update"
	target := uuid.New()
	if ticketID != nil {
		target = *ticketID
	} else {
		kind = "create"
	}

	query := `
		INSERT INTO grievance_ticket_mutations (id, ticket_id, kind, category, issue_type, payload, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.Exec(ctx, query,
		uuid.New(), target, kind,
		string(input.Category), string(input.IssueType),
		body, actor.ID, s.now(),
	)
	if err != nil {
		return uuid.Nil, newTransportError(err)
	}

	s.logger.Infow("Mutation recorded",
		"ticket_id", target,
		"kind", kind,
		"category", input.Category,
		"issue_type", input.IssueType,
		"actor", actor.ID,
	)
	return target, nil
}
