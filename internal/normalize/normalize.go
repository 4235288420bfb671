// Package normalize turns a server-shaped ticket snapshot into the flat
// editable form state.
//
// Wrapped values are unwrapped, core keys are camel-cased where the form
// expects it, flex keys keep their schema names and boolean fields have the
// empty sentinel coerced to nil. A missing sub-object is reported as a
// SchemaMismatchError; it is never replaced by empty state.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/unicef/hope-grievance/internal/caseconv"
	"github.com/unicef/hope-grievance/internal/fields"
	"github.com/unicef/hope-grievance/internal/models"
)

// ErrSchemaMismatch matches every SchemaMismatchError via errors.Is.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaMismatchError reports an expected key or sub-object absent from,
// or malformed in, a fetched snapshot.
type SchemaMismatchError struct {
	Path   string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch at %s: %s", e.Path, e.Reason)
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

func missing(path string) error {
	return &SchemaMismatchError{Path: path, Reason: "missing"}
}

// Variant fills the issue-type-specific part of the state.
type Variant func(n *Normalizer, snap *models.TicketSnapshot, state *models.FormState) error

// Normalizer converts snapshots. Schemas are optional; without them no
// boolean coercion happens.
type Normalizer struct {
	Individuals *fields.Schema
	Households  *fields.Schema

	// Actor is the default assignee for unassigned tickets.
	Actor *models.Actor
}

// Normalize builds the editable state for snap using variant.
func (n *Normalizer) Normalize(snap *models.TicketSnapshot, variant Variant) (*models.FormState, error) {
	if snap == nil {
		return nil, missing("ticket")
	}

	state := n.common(snap)
	if variant != nil {
		if err := variant(n, snap, state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (n *Normalizer) common(snap *models.TicketSnapshot) *models.FormState {
	state := &models.FormState{
		Description:            snap.Description,
		AssignedTo:             snap.AssignedTo,
		Category:               snap.Category,
		IssueType:              snap.IssueType,
		Language:               snap.Language,
		Admin:                  snap.Admin,
		Area:                   snap.Area,
		Priority:               snap.Priority,
		Urgency:                snap.Urgency,
		Partner:                snap.Partner,
		Comments:               snap.Comments,
		Programme:              snap.Programme,
		SelectedHousehold:      snap.Household,
		SelectedIndividual:     snap.Individual,
		SelectedPaymentRecords: []string{},
		SelectedLinkedTickets:  make([]string, 0, len(snap.RelatedTickets)),
	}
	if state.AssignedTo == "" && n.Actor != nil {
		state.AssignedTo = n.Actor.ID
	}
	if snap.PaymentRecordID != "" {
		state.SelectedPaymentRecords = []string{snap.PaymentRecordID}
	}
	for _, t := range snap.RelatedTickets {
		state.SelectedLinkedTickets = append(state.SelectedLinkedTickets, t.ID)
	}
	return state
}

// None leaves the state with the common fields only.
func None(*Normalizer, *models.TicketSnapshot, *models.FormState) error { return nil }

// AddIndividual unwraps the data of the individual to be added. Core keys
// are camel-cased; flex keys are kept.
func AddIndividual(n *Normalizer, snap *models.TicketSnapshot, state *models.FormState) error {
	d := snap.AddIndividualDetail
	if d == nil {
		return missing("add_individual_ticket_details")
	}
	if d.IndividualData == nil {
		return missing("add_individual_ticket_details.individual_data")
	}

	data := d.IndividualData
	bucket := &models.FieldBucket{
		Fields:     make(map[string]any, len(data.Core)),
		FlexFields: make(map[string]any, len(data.Flex)),
	}
	for _, k := range data.CoreKeys() {
		bucket.Fields[caseconv.CamelCase(k)] = coerce(n.Individuals, k, data.Core[k].Value)
	}
	for _, k := range data.FlexKeys() {
		bucket.FlexFields[k] = coerce(n.Individuals, k, data.Flex[k].Value)
	}
	state.IndividualData = bucket
	return nil
}

// EditIndividual flattens requested individual changes into field edits and
// unwraps the document, identity and payment channel collections.
func EditIndividual(n *Normalizer, snap *models.TicketSnapshot, state *models.FormState) error {
	const base = "individual_data_update_ticket_details"

	d := snap.EditIndividualDetail
	if d == nil {
		return missing(base)
	}
	if d.IndividualData == nil {
		return missing(base + ".individual_data")
	}
	state.IndividualDataUpdateFields = flatten(d.IndividualData, n.Individuals)

	var err error
	if state.IndividualDataUpdateFieldsDocuments, err = unwrapList[models.Document](d.Documents, base+".documents"); err != nil {
		return err
	}
	if state.IndividualDataUpdateDocumentsToRemove, err = unwrapIDs(d.DocumentsToRemove, base+".documents_to_remove"); err != nil {
		return err
	}
	if state.IndividualDataUpdateDocumentsToEdit, err = unwrapList[models.Document](d.DocumentsToEdit, base+".documents_to_edit"); err != nil {
		return err
	}

	if state.IndividualDataUpdateFieldsIdentities, err = unwrapList[models.Identity](d.Identities, base+".identities"); err != nil {
		return err
	}
	if state.IndividualDataUpdateIdentitiesToRemove, err = unwrapIDs(d.IdentitiesToRemove, base+".identities_to_remove"); err != nil {
		return err
	}
	if state.IndividualDataUpdateIdentitiesToEdit, err = unwrapList[models.Identity](d.IdentitiesToEdit, base+".identities_to_edit"); err != nil {
		return err
	}

	if state.IndividualDataUpdateFieldsPaymentChannels, err = unwrapList[models.PaymentChannel](d.PaymentChannels, base+".payment_channels"); err != nil {
		return err
	}
	if state.IndividualDataUpdatePaymentChannelsToRemove, err = unwrapIDs(d.PaymentChannelsToRemove, base+".payment_channels_to_remove"); err != nil {
		return err
	}
	if state.IndividualDataUpdatePaymentChannelsToEdit, err = unwrapList[models.PaymentChannel](d.PaymentChannelsToEdit, base+".payment_channels_to_edit"); err != nil {
		return err
	}
	return nil
}

// EditHousehold flattens requested household changes into field edits.
func EditHousehold(n *Normalizer, snap *models.TicketSnapshot, state *models.FormState) error {
	d := snap.EditHouseholdDetail
	if d == nil {
		return missing("household_data_update_ticket_details")
	}
	if d.HouseholdData == nil {
		return missing("household_data_update_ticket_details.household_data")
	}
	state.HouseholdDataUpdateFields = flatten(d.HouseholdData, n.Households)
	return nil
}

// DeleteIndividual requires the individual being deleted.
func DeleteIndividual(_ *Normalizer, snap *models.TicketSnapshot, _ *models.FormState) error {
	if snap.Individual == nil {
		return missing("individual")
	}
	return nil
}

// flatten projects every entry with a defined value, core entries first.
func flatten(data *models.FieldData, schema *fields.Schema) []models.FieldEdit {
	edits := make([]models.FieldEdit, 0, len(data.Core)+len(data.Flex))
	for _, k := range data.CoreKeys() {
		w := data.Core[k]
		if !w.Defined {
			continue
		}
		edits = append(edits, models.FieldEdit{FieldName: k, FieldValue: coerce(schema, k, w.Value)})
	}
	for _, k := range data.FlexKeys() {
		w := data.Flex[k]
		if !w.Defined {
			continue
		}
		edits = append(edits, models.FieldEdit{FieldName: k, FieldValue: coerce(schema, k, w.Value), IsFlexField: true})
	}
	return edits
}

func coerce(schema *fields.Schema, name string, v any) any {
	return fields.CoerceValue(schema.Kind(name), v)
}

func unwrapList[T any](items []models.WrappedValue, path string) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, w := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		if !w.Defined || w.Value == nil {
			return nil, missing(p + ".value")
		}
		b, err := json.Marshal(w.Value)
		if err != nil {
			return nil, &SchemaMismatchError{Path: p, Reason: err.Error()}
		}
		var item T
		if err := json.Unmarshal(b, &item); err != nil {
			return nil, &SchemaMismatchError{Path: p, Reason: err.Error()}
		}
		out = append(out, item)
	}
	return out, nil
}

// unwrapIDs accepts either bare ids or objects carrying an "id".
func unwrapIDs(items []models.WrappedValue, path string) ([]string, error) {
	out := make([]string, 0, len(items))
	for i, w := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		switch v := w.Value.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			id, ok := v["id"].(string)
			if !ok || id == "" {
				return nil, missing(p + ".value.id")
			}
			out = append(out, id)
		default:
			return nil, &SchemaMismatchError{Path: p + ".value", Reason: "expected an id"}
		}
	}
	return out, nil
}
