// Package models defines the data structures shared across the service:
// the server-shaped ticket snapshot, the flat editable form state and the
// mutation payload sent back to the ticket transport.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Actor is the authenticated user driving an edit session.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FieldMessage is a per-field or general (empty Field) error message.
type FieldMessage struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ActivityLog records an edit-session event for accountability tracking
type ActivityLog struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	TicketID          *uuid.UUID `json:"ticket_id,omitempty" db:"ticket_id"`
	SessionID         string     `json:"session_id" db:"session_id"`
	ActivityType      string     `json:"activity_type" db:"activity_type"`
	ActionDescription string     `json:"action_description" db:"action_description"`
	Actor             string     `json:"actor" db:"actor"`
	Metadata          string     `json:"metadata,omitempty" db:"metadata"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// ActivityLogEntry is the input for logging an activity
type ActivityLogEntry struct {
	TicketID          *uuid.UUID
	SessionID         string
	ActivityType      string
	ActionDescription string
	Actor             string
	Metadata          string
}

// HealthStatus represents the server health check response
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}
