package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/unicef/hope-grievance/internal/models"
	"go.uber.org/zap"
)

const (
	ActivitySessionOpened = "session_opened"
	ActivitySubmitted     = "submitted"
	ActivitySubmitFailed  = "submit_failed"
)

// ActivityLogService records edit-session events per ticket
type ActivityLogService struct {
	db     Querier
	logger *zap.SugaredLogger
}

// NewActivityLogService creates a new activity log service
func NewActivityLogService(db Querier, logger *zap.SugaredLogger) *ActivityLogService {
	return &ActivityLogService{db: db, logger: logger}
}

// Log records an edit-session event
func (s *ActivityLogService) Log(ctx context.Context, entry *models.ActivityLogEntry) error {
	query := `
		INSERT INTO grievance_activity_logs (ticket_id, session_id, activity_type, action_description, actor, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query,
		entry.TicketID,
		entry.SessionID,
		entry.ActivityType,
		entry.ActionDescription,
		entry.Actor,
		entry.Metadata,
	)

	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}

	s.logger.Infow("Activity logged",
		"actor", entry.Actor,
		"type", entry.ActivityType,
		"session", entry.SessionID,
	)

	return nil
}

// FetchByTicket returns activity logs for a specific ticket
func (s *ActivityLogService) FetchByTicket(ctx context.Context, ticketID string, limit int) ([]models.ActivityLog, error) {
	query := `
		SELECT id, ticket_id, session_id, activity_type, action_description, actor, metadata, created_at
		FROM grievance_activity_logs
		WHERE ticket_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, ticketID, limit)
	if err != nil {
		return nil, err
	}
	return scanActivity(rows)
}

// FetchRecent returns recent activity logs across all tickets
func (s *ActivityLogService) FetchRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	query := `
		SELECT id, ticket_id, session_id, activity_type, action_description, actor, metadata, created_at
		FROM grievance_activity_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanActivity(rows)
}

func scanActivity(rows pgx.Rows) ([]models.ActivityLog, error) {
	defer rows.Close()

	logs := []models.ActivityLog{}
	for rows.Next() {
		var log models.ActivityLog
		if err := rows.Scan(&log.ID, &log.TicketID, &log.SessionID,
			&log.ActivityType, &log.ActionDescription, &log.Actor,
			&log.Metadata, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
