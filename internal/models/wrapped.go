package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// FlexFieldsKey is the server key holding the flex-field bucket inside a
// ticket's individual or household data.
const FlexFieldsKey = "flex_fields"

// WrappedValue is the server representation of a field value: {"value": ...}.
// Defined is false when the object carried no "value" key at all.
type WrappedValue struct {
	Value         any
	PreviousValue any
	Defined       bool
}

// Wrap builds a defined WrappedValue.
func Wrap(v any) WrappedValue {
	return WrappedValue{Value: v, Defined: true}
}

func (w *WrappedValue) UnmarshalJSON(data []byte) error {
	*w = WrappedValue{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("wrapped value must be an object: %w", err)
	}
	if raw, ok := obj["value"]; ok {
		v, err := DecodeAny(raw)
		if err != nil {
			return fmt.Errorf("decode value: %w", err)
		}
		w.Value = v
		w.Defined = true
	}
	if raw, ok := obj["previous_value"]; ok {
		v, err := DecodeAny(raw)
		if err != nil {
			return fmt.Errorf("decode previous_value: %w", err)
		}
		w.PreviousValue = v
	}
	return nil
}

func (w WrappedValue) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, 2)
	if w.Defined {
		obj["value"] = w.Value
	}
	if w.PreviousValue != nil {
		obj["previous_value"] = w.PreviousValue
	}
	return json.Marshal(obj)
}

// DecodeAny decodes raw JSON into an interface value, keeping numbers as
// json.Number so integers survive a decode/encode cycle unchanged.
func DecodeAny(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// FieldData is the individual_data / household_data object of a ticket
// detail. Core entries and the flex_fields bucket are kept apart, and the
// key order of the server document is remembered.
type FieldData struct {
	Core map[string]WrappedValue
	Flex map[string]WrappedValue

	// HasFlex records whether the document carried a flex_fields key.
	HasFlex bool

	coreOrder []string
	flexOrder []string
}

// CoreKeys returns the core keys in document order. Keys added
// programmatically follow in lexical order.
func (d FieldData) CoreKeys() []string { return orderedKeys(d.Core, d.coreOrder) }

// FlexKeys returns the flex keys in document order.
func (d FieldData) FlexKeys() []string { return orderedKeys(d.Flex, d.flexOrder) }

func (d *FieldData) UnmarshalJSON(data []byte) error {
	keys, raw, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}

	*d = FieldData{Core: make(map[string]WrappedValue, len(keys))}
	for _, k := range keys {
		if k == FlexFieldsKey {
			d.HasFlex = true
			if bytes.Equal(bytes.TrimSpace(raw[k]), []byte("null")) {
				continue
			}
			flexKeys, flexRaw, err := decodeOrderedObject(raw[k])
			if err != nil {
				return fmt.Errorf("%s: %w", FlexFieldsKey, err)
			}
			d.Flex = make(map[string]WrappedValue, len(flexKeys))
			for _, fk := range flexKeys {
				var w WrappedValue
				if err := json.Unmarshal(flexRaw[fk], &w); err != nil {
					return fmt.Errorf("%s.%s: %w", FlexFieldsKey, fk, err)
				}
				d.Flex[fk] = w
				d.flexOrder = append(d.flexOrder, fk)
			}
			continue
		}

		var w WrappedValue
		if err := json.Unmarshal(raw[k], &w); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		d.Core[k] = w
		d.coreOrder = append(d.coreOrder, k)
	}
	return nil
}

func (d FieldData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(k string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return nil
	}
	for _, k := range d.CoreKeys() {
		if err := write(k, d.Core[k]); err != nil {
			return nil, err
		}
	}
	if d.HasFlex || len(d.Flex) > 0 {
		flex := d.Flex
		if flex == nil {
			flex = map[string]WrappedValue{}
		}
		if err := write(FlexFieldsKey, flex); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeOrderedObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	raw := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", key, err)
		}
		if _, dup := raw[key]; !dup {
			keys = append(keys, key)
		}
		raw[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, raw, nil
}

func orderedKeys(m map[string]WrappedValue, order []string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
