package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/unicef/hope-grievance/internal/models"
)

var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrSessionNotFound    = errors.New("edit session not found")
	ErrSubmitInFlight     = errors.New("a submit is already in progress for this session")
	ErrUnknownCollection  = errors.New("unknown collection")
	ErrNoCollections      = errors.New("this ticket has no editable collections")
	ErrFieldsNotEditable  = errors.New("this ticket has no editable fields")
	ErrInvalidScope       = errors.New("unknown schema scope")
	ErrValidationRejected = errors.New("validation failed")
	ErrInvalidPayload     = errors.New("invalid collection payload")
)

// TransportError is a failed mutation. Messages are shown to the user as
// they are; the session state is kept for resubmission.
type TransportError struct {
	Messages []models.FieldMessage
	Err      error
}

func (e *TransportError) Error() string {
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		if m.Field != "" {
			parts = append(parts, m.Field+": "+m.Message)
			continue
		}
		parts = append(parts, m.Message)
	}
	return fmt.Sprintf("mutation failed: %s", strings.Join(parts, "; "))
}

func (e *TransportError) Unwrap() error { return e.Err }

// newTransportError turns a store error into per-field messages where the
// database reports a column.
func newTransportError(err error) *TransportError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &TransportError{
			Messages: []models.FieldMessage{{Field: pgErr.ColumnName, Message: pgErr.Message}},
			Err:      err,
		}
	}
	return &TransportError{
		Messages: []models.FieldMessage{{Message: err.Error()}},
		Err:      err,
	}
}

// ValidationError carries the per-field messages that blocked a submit.
type ValidationError struct {
	Errors models.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Errors))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationRejected }
