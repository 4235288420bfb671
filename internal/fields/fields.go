// Package fields classifies field attributes into the input kinds every
// editor and presenter works with.
package fields

import (
	"github.com/unicef/hope-grievance/internal/models"
)

// Kind is the semantic input kind of a field.
type Kind string

const (
	KindText         Kind = "text"
	KindInteger      Kind = "integer"
	KindDecimal      Kind = "decimal"
	KindDate         Kind = "date"
	KindBoolean      Kind = "boolean"
	KindSingleChoice Kind = "singleChoice"
	KindMultiChoice  Kind = "multiChoice"
	KindImage        Kind = "image"
)

// IsChoice reports whether k resolves values through a choice list.
func (k Kind) IsChoice() bool {
	return k == KindSingleChoice || k == KindMultiChoice
}

type options struct {
	multiSelect bool
}

// Option adjusts classification at a call site.
type Option func(*options)

// WithMultiSelect makes SELECT_ONE and SELECT_MULTIPLE fields classify as
// multi-choice. SELECT_MANY is always multi-choice.
func WithMultiSelect() Option {
	return func(o *options) { o.multiSelect = true }
}

// Classify maps an attribute's type to exactly one Kind. Unknown types are
// treated as text.
func Classify(attr models.FieldAttribute, opts ...Option) Kind {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch attr.Type {
	case models.FieldTypeInteger:
		return KindInteger
	case models.FieldTypeDecimal:
		return KindDecimal
	case models.FieldTypeDate:
		return KindDate
	case models.FieldTypeBool:
		return KindBoolean
	case models.FieldTypeImage:
		return KindImage
	case models.FieldTypeSelectMany:
		return KindMultiChoice
	case models.FieldTypeSelectOne, models.FieldTypeSelectMultiple:
		if o.multiSelect {
			return KindMultiChoice
		}
		return KindSingleChoice
	default:
		return KindText
	}
}
