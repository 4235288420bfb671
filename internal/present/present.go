// Package present renders stored field values for display next to the
// edit input ("current value").
package present

import (
	"fmt"
	"strings"

	"github.com/unicef/hope-grievance/internal/fields"
	"github.com/unicef/hope-grievance/internal/models"
)

// Placeholder is shown for missing values and unmatched choices.
const Placeholder = "-"

// Display is a presented value. Images carry a photo reference for an
// external viewer instead of text.
type Display struct {
	Kind     fields.Kind `json:"kind"`
	Text     string      `json:"text"`
	PhotoRef string      `json:"photoRef,omitempty"`
}

// Present renders raw according to the attribute's classified kind.
func Present(attr models.FieldAttribute, raw any, opts ...fields.Option) Display {
	kind := fields.Classify(attr, opts...)
	d := Display{Kind: kind}

	switch kind {
	case fields.KindImage:
		if ref := scalarText(raw); ref != "" {
			d.PhotoRef = ref
			return d
		}
		d.Text = Placeholder
	case fields.KindBoolean:
		d.Text = boolText(fields.CoerceValue(kind, raw))
	case fields.KindSingleChoice, fields.KindMultiChoice:
		d.Text = mapValues(raw, func(v any) string { return choiceLabel(attr.Choices, v) })
	default:
		d.Text = mapValues(raw, func(v any) string {
			if v == nil {
				return Placeholder
			}
			return fmt.Sprint(v)
		})
	}
	return d
}

func boolText(v any) string {
	switch b := v.(type) {
	case bool:
		if b {
			return "Yes"
		}
		return "No"
	case nil:
		return Placeholder
	default:
		return fmt.Sprint(b)
	}
}

func choiceLabel(choices []models.Choice, v any) string {
	if v == nil {
		return Placeholder
	}
	want := fmt.Sprint(v)
	for _, c := range choices {
		if fmt.Sprint(c.Value) == want {
			return c.LabelEn
		}
	}
	return Placeholder
}

// mapValues resolves each element of an array value and joins them; a
// scalar is resolved directly.
func mapValues(raw any, resolve func(any) string) string {
	var elems []any
	switch v := raw.(type) {
	case nil:
		return Placeholder
	case []any:
		elems = v
	case []string:
		for _, s := range v {
			elems = append(elems, s)
		}
	default:
		return resolve(raw)
	}
	if len(elems) == 0 {
		return Placeholder
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = resolve(e)
	}
	return strings.Join(parts, ", ")
}

func scalarText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
