package models

import (
	"encoding/json"
	"fmt"
)

// FieldEdit is one requested field change of a data-update ticket.
type FieldEdit struct {
	FieldName   string `json:"fieldName"`
	FieldValue  any    `json:"fieldValue"`
	IsFlexField bool   `json:"isFlexField"`
}

// FieldBucket holds core fields next to a flex-field bucket. It serializes
// flat, with the bucket under "flexFields".
type FieldBucket struct {
	Fields     map[string]any
	FlexFields map[string]any
}

func (b FieldBucket) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Fields)+1)
	for k, v := range b.Fields {
		out[k] = v
	}
	flex := b.FlexFields
	if flex == nil {
		flex = map[string]any{}
	}
	out["flexFields"] = flex
	return json.Marshal(out)
}

func (b *FieldBucket) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = FieldBucket{Fields: make(map[string]any, len(raw))}
	for k, r := range raw {
		v, err := DecodeAny(r)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		if k == "flexFields" {
			flex, ok := v.(map[string]any)
			if !ok && v != nil {
				return fmt.Errorf("flexFields must be an object")
			}
			b.FlexFields = flex
			continue
		}
		b.Fields[k] = v
	}
	return nil
}

// FieldErrors attaches validation messages to form keys.
type FieldErrors map[string][]string

// Add appends a message for key.
func (e FieldErrors) Add(key, msg string) {
	e[key] = append(e[key], msg)
}

// FormState is the flat, editable state of one ticket edit or create
// session. It is derived from a TicketSnapshot and owned by a single session.
type FormState struct {
	Description string    `json:"description"`
	AssignedTo  string    `json:"assignedTo,omitempty"`
	Category    Category  `json:"category"`
	IssueType   IssueType `json:"issueType,omitempty"`
	Language    string    `json:"language,omitempty"`
	Admin       string    `json:"admin,omitempty"`
	Area        string    `json:"area,omitempty"`
	Priority    int       `json:"priority,omitempty"`
	Urgency     int       `json:"urgency,omitempty"`
	Partner     string    `json:"partner,omitempty"`
	Comments    string    `json:"comments,omitempty"`
	Programme   string    `json:"programme,omitempty"`

	SelectedHousehold      *Reference `json:"selectedHousehold,omitempty"`
	SelectedIndividual     *Reference `json:"selectedIndividual,omitempty"`
	SelectedPaymentRecords []string   `json:"selectedPaymentRecords"`
	SelectedLinkedTickets  []string   `json:"selectedLinkedTickets"`

	// Add individual
	IndividualData *FieldBucket `json:"individualData,omitempty"`

	// Edit individual
	IndividualDataUpdateFields                  []FieldEdit      `json:"individualDataUpdateFields,omitempty"`
	IndividualDataUpdateFieldsDocuments         []Document       `json:"individualDataUpdateFieldsDocuments,omitempty"`
	IndividualDataUpdateDocumentsToRemove       []string         `json:"individualDataUpdateDocumentsToRemove,omitempty"`
	IndividualDataUpdateDocumentsToEdit         []Document       `json:"individualDataUpdateDocumentsToEdit,omitempty"`
	IndividualDataUpdateFieldsIdentities        []Identity       `json:"individualDataUpdateFieldsIdentities,omitempty"`
	IndividualDataUpdateIdentitiesToRemove      []string         `json:"individualDataUpdateIdentitiesToRemove,omitempty"`
	IndividualDataUpdateIdentitiesToEdit        []Identity       `json:"individualDataUpdateIdentitiesToEdit,omitempty"`
	IndividualDataUpdateFieldsPaymentChannels   []PaymentChannel `json:"individualDataUpdateFieldsPaymentChannels,omitempty"`
	IndividualDataUpdatePaymentChannelsToRemove []string         `json:"individualDataUpdatePaymentChannelsToRemove,omitempty"`
	IndividualDataUpdatePaymentChannelsToEdit   []PaymentChannel `json:"individualDataUpdatePaymentChannelsToEdit,omitempty"`

	// Edit household
	HouseholdDataUpdateFields []FieldEdit `json:"householdDataUpdateFields,omitempty"`

	FieldErrors FieldErrors `json:"fieldErrors,omitempty"`
}

// SetFieldEdit replaces the edit with the same name and flex flag, or appends it.
func SetFieldEdit(edits []FieldEdit, edit FieldEdit) []FieldEdit {
	for i := range edits {
		if edits[i].FieldName == edit.FieldName && edits[i].IsFlexField == edit.IsFlexField {
			edits[i] = edit
			return edits
		}
	}
	return append(edits, edit)
}

// Clone returns a copy of s that shares no slices or maps with it.
func (s *FormState) Clone() *FormState {
	c := *s
	c.SelectedPaymentRecords = cloneSlice(s.SelectedPaymentRecords)
	c.SelectedLinkedTickets = cloneSlice(s.SelectedLinkedTickets)
	if s.IndividualData != nil {
		c.IndividualData = &FieldBucket{
			Fields:     cloneMap(s.IndividualData.Fields),
			FlexFields: cloneMap(s.IndividualData.FlexFields),
		}
	}
	c.IndividualDataUpdateFields = cloneSlice(s.IndividualDataUpdateFields)
	c.IndividualDataUpdateFieldsDocuments = cloneSlice(s.IndividualDataUpdateFieldsDocuments)
	c.IndividualDataUpdateDocumentsToRemove = cloneSlice(s.IndividualDataUpdateDocumentsToRemove)
	c.IndividualDataUpdateDocumentsToEdit = cloneSlice(s.IndividualDataUpdateDocumentsToEdit)
	c.IndividualDataUpdateFieldsIdentities = cloneSlice(s.IndividualDataUpdateFieldsIdentities)
	c.IndividualDataUpdateIdentitiesToRemove = cloneSlice(s.IndividualDataUpdateIdentitiesToRemove)
	c.IndividualDataUpdateIdentitiesToEdit = cloneSlice(s.IndividualDataUpdateIdentitiesToEdit)
	c.IndividualDataUpdateFieldsPaymentChannels = cloneSlice(s.IndividualDataUpdateFieldsPaymentChannels)
	c.IndividualDataUpdatePaymentChannelsToRemove = cloneSlice(s.IndividualDataUpdatePaymentChannelsToRemove)
	c.IndividualDataUpdatePaymentChannelsToEdit = cloneSlice(s.IndividualDataUpdatePaymentChannelsToEdit)
	c.HouseholdDataUpdateFields = cloneSlice(s.HouseholdDataUpdateFields)
	if s.FieldErrors != nil {
		c.FieldErrors = make(FieldErrors, len(s.FieldErrors))
		for k, v := range s.FieldErrors {
			c.FieldErrors[k] = cloneSlice(v)
		}
	}
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
