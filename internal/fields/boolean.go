package fields

import (
	"strings"
)

// BoolOption is the presented form of a tri-state boolean.
type BoolOption string

const (
	BoolYes   BoolOption = "YES"
	BoolNo    BoolOption = "NO"
	BoolEmpty BoolOption = ""
)

// BoolOptions lists the options offered for a boolean field. Required
// fields cannot be left empty.
func BoolOptions(required bool) []BoolOption {
	if required {
		return []BoolOption{BoolYes, BoolNo}
	}
	return []BoolOption{BoolYes, BoolNo, BoolEmpty}
}

// ToBoolOption maps true/false/nil to YES/NO/"".
func ToBoolOption(v *bool) BoolOption {
	switch {
	case v == nil:
		return BoolEmpty
	case *v:
		return BoolYes
	default:
		return BoolNo
	}
}

// FromBoolOption maps YES/NO/"" back to true/false/nil. Any other input is
// reported as not ok.
func FromBoolOption(o BoolOption) (*bool, bool) {
	switch BoolOption(strings.ToUpper(string(o))) {
	case BoolYes:
		t := true
		return &t, true
	case BoolNo:
		f := false
		return &f, true
	case BoolEmpty:
		return nil, true
	default:
		return nil, false
	}
}

// CoerceValue normalizes a raw form value for a field of kind k. For boolean
// fields the empty sentinel becomes nil and YES/NO strings become booleans;
// values of other kinds are returned unchanged.
func CoerceValue(k Kind, v any) any {
	if k != KindBoolean {
		return v
	}
	switch t := v.(type) {
	case string:
		if b, ok := FromBoolOption(BoolOption(t)); ok {
			if b == nil {
				return nil
			}
			return *b
		}
		switch strings.ToLower(t) {
		case "true":
			return true
		case "false":
			return false
		}
		return v
	case *bool:
		if t == nil {
			return nil
		}
		return *t
	default:
		return v
	}
}
