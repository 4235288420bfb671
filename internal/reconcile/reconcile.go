// Package reconcile tracks editable sub-record collections (documents,
// identities, payment channels) across an edit session.
//
// Every item keeps a stable id for the whole session: server items keep the
// server id, items added in the session get a generated UUID. Server items
// are never dropped from the collection; removing one only flags it.
//
// Only one row is expected to be in edit mode at a time. That is a caller
// contract and is not enforced here.
package reconcile

import (
	"errors"
	"reflect"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("item not found")
	ErrDuplicate  = errors.New("item id already present")
	ErrRemoved    = errors.New("item is flagged for removal")
	ErrNotRemoved = errors.New("item is not flagged for removal")
	ErrNotEditing = errors.New("item is not in edit mode")
)

// Origin tells where an item came from.
type Origin string

const (
	OriginExisting Origin = "existing"
	OriginNew      Origin = "new"
)

// Item is a reconciler-tracked sub-record.
type Item[T any] struct {
	ID      string `json:"id"`
	Payload T      `json:"payload"`
	Origin  Origin `json:"origin"`
	Editing bool   `json:"editing"`
	Removed bool   `json:"removed"`
	// Edited reports whether the committed payload of an existing item
	// differs from the one it was registered with.
	Edited bool `json:"edited"`

	original T
}

// Collection is an ordered, id-keyed set of items. It is not safe for
// concurrent use.
type Collection[T any] struct {
	items    []*Item[T]
	toRemove []string
	newID    func() string
}

// Option configures a Collection.
type Option func(*settings)

type settings struct {
	newID func() string
}

// WithIDGenerator replaces the UUID generator used for new items.
func WithIDGenerator(fn func() string) Option {
	return func(s *settings) { s.newID = fn }
}

// New creates an empty collection.
func New[T any](opts ...Option) *Collection[T] {
	s := settings{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&s)
	}
	return &Collection[T]{newID: s.newID}
}

// AddExisting registers a server-origin item under its server id.
func (c *Collection[T]) AddExisting(id string, payload T) error {
	if id == "" {
		return ErrNotFound
	}
	if c.index(id) >= 0 {
		return ErrDuplicate
	}
	c.items = append(c.items, &Item[T]{ID: id, Payload: payload, Origin: OriginExisting, original: payload})
	return nil
}

// Add appends a new client-origin item and returns its generated id.
func (c *Collection[T]) Add(payload T) string {
	id := c.newID()
	for c.index(id) >= 0 {
		id = c.newID()
	}
	c.items = append(c.items, &Item[T]{ID: id, Payload: payload, Origin: OriginNew})
	return id
}

// StartEdit puts the item in edit mode and returns its committed payload
// for pre-filling the edit form.
func (c *Collection[T]) StartEdit(id string) (T, error) {
	var zero T
	it := c.get(id)
	if it == nil {
		return zero, ErrNotFound
	}
	if it.Removed {
		return zero, ErrRemoved
	}
	it.Editing = true
	return it.Payload, nil
}

// CancelEdit leaves edit mode without touching the payload.
func (c *Collection[T]) CancelEdit(id string) error {
	it := c.get(id)
	if it == nil {
		return ErrNotFound
	}
	if !it.Editing {
		return ErrNotEditing
	}
	it.Editing = false
	return nil
}

// CommitEdit replaces the payload and leaves edit mode.
func (c *Collection[T]) CommitEdit(id string, payload T) error {
	it := c.get(id)
	if it == nil {
		return ErrNotFound
	}
	if it.Removed {
		return ErrRemoved
	}
	if !it.Editing {
		return ErrNotEditing
	}
	it.Payload = payload
	it.Editing = false
	if it.Origin == OriginExisting {
		it.Edited = !reflect.DeepEqual(payload, it.original)
	}
	return nil
}

// Remove drops a new item outright, or flags an existing one for removal.
// A flagged item leaves edit mode.
func (c *Collection[T]) Remove(id string) error {
	i := c.index(id)
	if i < 0 {
		return ErrNotFound
	}
	it := c.items[i]
	if it.Origin == OriginNew {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return nil
	}
	it.Editing = false
	if !it.Removed {
		it.Removed = true
		c.toRemove = append(c.toRemove, id)
	}
	return nil
}

// Restore undoes Remove on an existing item.
func (c *Collection[T]) Restore(id string) error {
	it := c.get(id)
	if it == nil {
		return ErrNotFound
	}
	if !it.Removed {
		return ErrNotRemoved
	}
	it.Removed = false
	for i, rid := range c.toRemove {
		if rid == id {
			c.toRemove = append(c.toRemove[:i], c.toRemove[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of the item with the given id.
func (c *Collection[T]) Get(id string) (Item[T], bool) {
	it := c.get(id)
	if it == nil {
		return Item[T]{}, false
	}
	return *it, true
}

// Len returns the number of tracked items, flagged ones included.
func (c *Collection[T]) Len() int { return len(c.items) }

// Items returns copies of all items in order.
func (c *Collection[T]) Items() []Item[T] {
	return c.filter(func(*Item[T]) bool { return true })
}

// Display returns the items shown as passive rows, flagged ones included.
func (c *Collection[T]) Display() []Item[T] {
	return c.filter(func(it *Item[T]) bool { return !it.Editing })
}

// Editing returns the items currently in edit mode.
func (c *Collection[T]) Editing() []Item[T] {
	return c.filter(func(it *Item[T]) bool { return it.Editing })
}

// ToRemoveIDs returns the ids flagged for removal in flag order.
func (c *Collection[T]) ToRemoveIDs() []string {
	return append([]string{}, c.toRemove...)
}

// Added returns the payloads of items created in this session.
func (c *Collection[T]) Added() []T {
	return c.payloads(func(it *Item[T]) bool { return it.Origin == OriginNew })
}

// Edited returns the payloads of existing items with committed edits that
// are not flagged for removal.
func (c *Collection[T]) Edited() []T {
	return c.payloads(func(it *Item[T]) bool {
		return it.Origin == OriginExisting && it.Edited && !it.Removed
	})
}

// FindIndexByID returns the position of id in items, or -1.
func FindIndexByID[T any](items []Item[T], id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) index(id string) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) get(id string) *Item[T] {
	if i := c.index(id); i >= 0 {
		return c.items[i]
	}
	return nil
}

func (c *Collection[T]) filter(keep func(*Item[T]) bool) []Item[T] {
	out := make([]Item[T], 0, len(c.items))
	for _, it := range c.items {
		if keep(it) {
			out = append(out, *it)
		}
	}
	return out
}

func (c *Collection[T]) payloads(keep func(*Item[T]) bool) []T {
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if keep(it) {
			out = append(out, it.Payload)
		}
	}
	return out
}
