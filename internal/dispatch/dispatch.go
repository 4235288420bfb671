// Package dispatch implements the two-level (category, issueType) lookup
// table that selects per-ticket behavior.
//
// A category is either terminal, resolving to one handler whatever the
// issue type, or branching, resolving through an inner table keyed by issue
// type. Resolution never fails: any miss yields the table's default handler.
package dispatch

import (
	"fmt"

	"github.com/unicef/hope-grievance/internal/models"
)

// Participation tells whether a category's issue type takes part in the key.
type Participation int

const (
	// IssueTypeIgnored means the category has no issue types.
	IssueTypeIgnored Participation = iota
	// IssueTypeRequired means the issue type selects the handler.
	IssueTypeRequired
	// IssueTypeAccepted means tickets carry an issue type but the handler
	// does not branch on it.
	IssueTypeAccepted
)

func (p Participation) String() string {
	switch p {
	case IssueTypeRequired:
		return "required"
	case IssueTypeAccepted:
		return "IGNORE"
	default:
		return "ignored"
	}
}

// Key is a canonical dispatch key.
type Key struct {
	Category  models.Category
	IssueType models.IssueType
}

func (k Key) String() string {
	if k.IssueType == "" {
		return string(k.Category)
	}
	return fmt.Sprintf("%s/%s", k.Category, k.IssueType)
}

type entry[H any] struct {
	terminal bool
	handler  H
	branches map[models.IssueType]H
}

// Table maps (category, issueType) to a handler of type H. Build it with
// Terminal and Branch, then Freeze it; a frozen table is read-only and safe
// to share.
type Table[H any] struct {
	def           H
	entries       map[models.Category]*entry[H]
	participation map[models.Category]Participation
	frozen        bool
}

// NewTable creates an empty table that resolves every key to def.
func NewTable[H any](def H) *Table[H] {
	return &Table[H]{
		def:           def,
		entries:       make(map[models.Category]*entry[H]),
		participation: make(map[models.Category]Participation),
	}
}

// Terminal registers a category that resolves to h regardless of issue type.
func (t *Table[H]) Terminal(c models.Category, h H) *Table[H] {
	t.mustBeOpen()
	if e, ok := t.entries[c]; ok && !e.terminal {
		panic(fmt.Sprintf("dispatch: category %s already has issue-type branches", c))
	}
	t.entries[c] = &entry[H]{terminal: true, handler: h}
	if _, ok := t.participation[c]; !ok {
		t.participation[c] = IssueTypeIgnored
	}
	return t
}

// Branch registers h for (c, it) and marks c as requiring an issue type.
func (t *Table[H]) Branch(c models.Category, it models.IssueType, h H) *Table[H] {
	t.mustBeOpen()
	e, ok := t.entries[c]
	if ok && e.terminal {
		panic(fmt.Sprintf("dispatch: category %s is terminal", c))
	}
	if !ok {
		e = &entry[H]{branches: make(map[models.IssueType]H)}
		t.entries[c] = e
	}
	e.branches[it] = h
	t.participation[c] = IssueTypeRequired
	return t
}

// SetParticipation overrides the side table for c. Use IssueTypeAccepted for
// terminal categories whose tickets carry an issue type.
func (t *Table[H]) SetParticipation(c models.Category, p Participation) *Table[H] {
	t.mustBeOpen()
	if e, ok := t.entries[c]; ok && !e.terminal && p != IssueTypeRequired {
		panic(fmt.Sprintf("dispatch: branching category %s must require an issue type", c))
	}
	t.participation[c] = p
	return t
}

// Freeze makes the table read-only.
func (t *Table[H]) Freeze() *Table[H] {
	t.frozen = true
	return t
}

// Participation reports how c uses the issue type. Unknown categories
// report IssueTypeIgnored.
func (t *Table[H]) Participation(c models.Category) Participation {
	return t.participation[c]
}

// Key canonicalizes (c, it): the issue type is dropped unless c branches on it.
func (t *Table[H]) Key(c models.Category, it models.IssueType) Key {
	if t.participation[c] != IssueTypeRequired {
		return Key{Category: c}
	}
	return Key{Category: c, IssueType: it}
}

// Lookup resolves (c, it) and reports whether a registered handler matched.
func (t *Table[H]) Lookup(c models.Category, it models.IssueType) (H, bool) {
	e, ok := t.entries[c]
	if !ok {
		return t.def, false
	}
	if e.terminal {
		return e.handler, true
	}
	if it == "" {
		return t.def, false
	}
	h, ok := e.branches[it]
	if !ok {
		return t.def, false
	}
	return h, true
}

// Resolve returns the handler for (c, it), or the default handler.
func (t *Table[H]) Resolve(c models.Category, it models.IssueType) H {
	h, _ := t.Lookup(c, it)
	return h
}

// Default returns the fallback handler.
func (t *Table[H]) Default() H {
	return t.def
}

// Keys lists every registered key.
func (t *Table[H]) Keys() []Key {
	var keys []Key
	for c, e := range t.entries {
		if e.terminal {
			keys = append(keys, Key{Category: c})
			continue
		}
		for it := range e.branches {
			keys = append(keys, Key{Category: c, IssueType: it})
		}
	}
	return keys
}

func (t *Table[H]) mustBeOpen() {
	if t.frozen {
		panic("dispatch: table is frozen")
	}
}
