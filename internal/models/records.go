package models

import (
	"encoding/json"
	"fmt"

	"github.com/unicef/hope-grievance/internal/caseconv"
)

// Document is an identity document attached to an individual.
type Document struct {
	ID       string `json:"id,omitempty"`
	Country  string `json:"country,omitempty"`
	Type     string `json:"type,omitempty"`
	Number   string `json:"number,omitempty"`
	Photo    string `json:"photo,omitempty"`
	PhotoRaw string `json:"photoraw,omitempty"`
	// Extra holds keys without a typed field, camel-cased. They are
	// written back unchanged.
	Extra map[string]any `json:"-"`
}

// Identity is a national-ID-like identity issued by a partner agency.
type Identity struct {
	ID      string         `json:"id,omitempty"`
	Partner string         `json:"partner,omitempty"`
	Country string         `json:"country,omitempty"`
	Number  string         `json:"number,omitempty"`
	Extra   map[string]any `json:"-"`
}

// PaymentChannel is a bank or payment channel of an individual.
type PaymentChannel struct {
	ID                string         `json:"id,omitempty"`
	Type              string         `json:"type,omitempty"`
	BankName          string         `json:"bankName,omitempty"`
	BankAccountNumber string         `json:"bankAccountNumber,omitempty"`
	Extra             map[string]any `json:"-"`
}

var (
	documentKeys       = keySet("id", "country", "type", "number", "photo", "photoraw")
	identityKeys       = keySet("id", "partner", "country", "number")
	paymentChannelKeys = keySet("id", "type", "bankName", "bankAccountNumber")
)

// Sub-records arrive snake_cased from the server and camelCased from the
// form layer; both decode to the same struct.

func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	extra, err := decodeRecord(data, (*alias)(d), documentKeys)
	d.Extra = extra
	return err
}

func (d Document) MarshalJSON() ([]byte, error) {
	type alias Document
	return encodeRecord(alias(d), d.Extra)
}

func (i *Identity) UnmarshalJSON(data []byte) error {
	type alias Identity
	extra, err := decodeRecord(data, (*alias)(i), identityKeys)
	i.Extra = extra
	return err
}

func (i Identity) MarshalJSON() ([]byte, error) {
	type alias Identity
	return encodeRecord(alias(i), i.Extra)
}

func (p *PaymentChannel) UnmarshalJSON(data []byte) error {
	type alias PaymentChannel
	extra, err := decodeRecord(data, (*alias)(p), paymentChannelKeys)
	p.Extra = extra
	return err
}

func (p PaymentChannel) MarshalJSON() ([]byte, error) {
	type alias PaymentChannel
	return encodeRecord(alias(p), p.Extra)
}

func keySet(keys ...string) map[string]bool {
	s := make(map[string]bool, len(keys))
	for _, k := range keys {
		s[k] = true
	}
	return s
}

// decodeRecord fills dst from the typed keys of data and returns the rest.
func decodeRecord(data []byte, dst any, known map[string]bool) (map[string]any, error) {
	v, err := DecodeAny(data)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("sub-record: expected an object, got %T", v)
	}
	camel := caseconv.CamelKeys(raw)
	// "photoraw" is a single lowercase word on the form side.
	if v, ok := camel["photoRaw"]; ok {
		camel["photoraw"] = v
		delete(camel, "photoRaw")
	}

	typed := make(map[string]any, len(camel))
	var extra map[string]any
	for k, v := range camel {
		if known[k] {
			typed[k] = v
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	b, err := json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	return extra, json.Unmarshal(b, dst)
}

// encodeRecord writes the typed fields of rec merged with extra. Typed
// fields win over an extra key of the same name.
func encodeRecord(rec any, extra map[string]any) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	obj := make(map[string]any, len(extra))
	for k, v := range extra {
		obj[k] = v
	}
	var typed map[string]json.RawMessage
	if err := json.Unmarshal(b, &typed); err != nil {
		return nil, err
	}
	for k, v := range typed {
		obj[k] = v
	}
	return json.Marshal(obj)
}
