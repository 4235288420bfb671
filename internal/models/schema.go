package models

import "encoding/json"

// Choice is a selectable option of a choice field.
type Choice struct {
	Value   any    `json:"value" yaml:"value"`
	LabelEn string `json:"labelEn" yaml:"label_en"`
}

// UnmarshalJSON keeps numeric values as json.Number, the way field values
// are stored, so both render the same when labels are looked up.
func (c *Choice) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value   json.RawMessage `json:"value"`
		LabelEn string          `json:"labelEn"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.LabelEn = raw.LabelEn
	c.Value = nil
	if len(raw.Value) > 0 {
		v, err := DecodeAny(raw.Value)
		if err != nil {
			return err
		}
		c.Value = v
	}
	return nil
}

// FieldAttribute is a static schema entry describing one individual or
// household field. It is reference data and never mutated by a session.
type FieldAttribute struct {
	Name        string    `json:"name" yaml:"name"`
	LabelEn     string    `json:"labelEn" yaml:"label_en"`
	Type        FieldType `json:"type" yaml:"type"`
	Choices     []Choice  `json:"choices,omitempty" yaml:"choices"`
	Required    bool      `json:"required" yaml:"required"`
	IsFlexField bool      `json:"isFlexField" yaml:"is_flex_field"`
}
