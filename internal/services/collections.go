package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/normalize"
	"github.com/unicef/hope-grievance/internal/reconcile"
)

// Collection kinds of an individual-update session.
const (
	CollectionDocuments       = "documents"
	CollectionIdentities      = "identities"
	CollectionPaymentChannels = "paymentChannels"
)

// CollectionAction is one reconciler operation.
type CollectionAction string

const (
	ActionAdd        CollectionAction = "add"
	ActionStartEdit  CollectionAction = "startEdit"
	ActionCancelEdit CollectionAction = "cancelEdit"
	ActionCommitEdit CollectionAction = "commitEdit"
	ActionRemove     CollectionAction = "remove"
	ActionRestore    CollectionAction = "restore"
)

// CollectionOp addresses an item of a session collection.
type CollectionOp struct {
	Kind    string           `json:"kind"`
	Action  CollectionAction `json:"action"`
	ItemID  string           `json:"itemId,omitempty"`
	Payload json.RawMessage  `json:"payload,omitempty"`
}

// CollectionResult reports the affected item. Payload is set by startEdit
// for pre-filling the edit form.
type CollectionResult struct {
	ItemID  string      `json:"itemId"`
	Payload any         `json:"payload,omitempty"`
	Session SessionView `json:"session"`
}

type collection interface {
	apply(op CollectionOp) (CollectionResult, error)
}

type typedCollection[T any] struct {
	c *reconcile.Collection[T]
}

func (t typedCollection[T]) apply(op CollectionOp) (CollectionResult, error) {
	res := CollectionResult{ItemID: op.ItemID}
	switch op.Action {
	case ActionAdd:
		p, err := decodePayload[T](op.Payload)
		if err != nil {
			return res, err
		}
		res.ItemID = t.c.Add(p)
	case ActionStartEdit:
		p, err := t.c.StartEdit(op.ItemID)
		if err != nil {
			return res, err
		}
		res.Payload = p
	case ActionCancelEdit:
		return res, t.c.CancelEdit(op.ItemID)
	case ActionCommitEdit:
		p, err := decodePayload[T](op.Payload)
		if err != nil {
			return res, err
		}
		return res, t.c.CommitEdit(op.ItemID, p)
	case ActionRemove:
		return res, t.c.Remove(op.ItemID)
	case ActionRestore:
		return res, t.c.Restore(op.ItemID)
	default:
		return res, fmt.Errorf("%w: unknown action %q", ErrInvalidPayload, op.Action)
	}
	return res, nil
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var p T
	if len(raw) == 0 {
		return p, fmt.Errorf("%w: payload required", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}

// seedCollection loads an individual's current records as existing items,
// then replays the ticket's requested edits, removals and additions.
func seedCollection[T any](
	c *reconcile.Collection[T],
	existing, added, edited []T,
	removed []string,
	idOf func(T) string,
	stub func(id string) T,
	path string,
) error {
	for i, e := range existing {
		id := idOf(e)
		if id == "" {
			return &normalize.SchemaMismatchError{Path: fmt.Sprintf("individual.%s[%d].id", path, i), Reason: "missing"}
		}
		if err := c.AddExisting(id, e); err != nil && !errors.Is(err, reconcile.ErrDuplicate) {
			return err
		}
	}
	for i, e := range edited {
		id := idOf(e)
		if id == "" {
			return &normalize.SchemaMismatchError{Path: fmt.Sprintf("%s_to_edit[%d].id", path, i), Reason: "missing"}
		}
		if _, ok := c.Get(id); !ok {
			if err := c.AddExisting(id, stub(id)); err != nil {
				return err
			}
		}
		if _, err := c.StartEdit(id); err != nil {
			return fmt.Errorf("%s_to_edit[%d]: %w", path, i, err)
		}
		if err := c.CommitEdit(id, e); err != nil {
			return fmt.Errorf("%s_to_edit[%d]: %w", path, i, err)
		}
	}
	for _, id := range removed {
		if _, ok := c.Get(id); !ok {
			if err := c.AddExisting(id, stub(id)); err != nil {
				return err
			}
		}
		if err := c.Remove(id); err != nil {
			return fmt.Errorf("%s_to_remove %s: %w", path, id, err)
		}
	}
	for _, a := range added {
		c.Add(a)
	}
	return nil
}

func documentID(d models.Document) string             { return d.ID }
func identityID(i models.Identity) string             { return i.ID }
func paymentChannelID(p models.PaymentChannel) string { return p.ID }
