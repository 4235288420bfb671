package normalize_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unicef/hope-grievance/internal/fields"
	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/normalize"
)

const editIndividualSnapshot = `{
	"id": "t1",
	"category": "DATA_CHANGE",
	"issue_type": "EDIT_INDIVIDUAL",
	"description": "fix name",
	"individual": {"id": "ind-1"},
	"payment_record_id": "pr-1",
	"related_tickets": [{"id": "t0"}, {"id": "t7"}],
	"individual_data_update_ticket_details": {
		"individual_data": {
			"given_name": {"value": "Jan"},
			"middle_name": {},
			"disability": {"value": ""},
			"flex_fields": {"shoe_size": {"value": "42"}}
		},
		"documents": [{"value": {"id": "d1", "country": "PL", "number": "123"}}],
		"documents_to_remove": [{"value": "d9"}, {"value": {"id": "d8"}}],
		"payment_channels_to_edit": [{"value": {"id": "p1", "bank_name": "X", "bank_account_number": "001"}, "previous_value": {"bank_name": "Y"}}]
	}
}`

func decode(t *testing.T, raw string) *models.TicketSnapshot {
	t.Helper()
	var snap models.TicketSnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	return &snap
}

func individualSchema() *fields.Schema {
	return fields.NewSchema([]models.FieldAttribute{
		{Name: "given_name", Type: models.FieldTypeString},
		{Name: "disability", Type: models.FieldTypeBool},
		{Name: "shoe_size", Type: models.FieldTypeString, IsFlexField: true},
	})
}

func TestEditIndividual(t *testing.T) {
	n := &normalize.Normalizer{Individuals: individualSchema()}
	state, err := n.Normalize(decode(t, editIndividualSnapshot), normalize.EditIndividual)
	require.NoError(t, err)

	assert.Equal(t, []models.FieldEdit{
		{FieldName: "given_name", FieldValue: "Jan"},
		{FieldName: "disability", FieldValue: nil},
		{FieldName: "shoe_size", FieldValue: "42", IsFlexField: true},
	}, state.IndividualDataUpdateFields)

	assert.Equal(t, []models.Document{{ID: "d1", Country: "PL", Number: "123"}}, state.IndividualDataUpdateFieldsDocuments)
	assert.Equal(t, []string{"d9", "d8"}, state.IndividualDataUpdateDocumentsToRemove)
	assert.Equal(t, []models.PaymentChannel{{ID: "p1", BankName: "X", BankAccountNumber: "001"}}, state.IndividualDataUpdatePaymentChannelsToEdit)
	assert.Empty(t, state.IndividualDataUpdateFieldsIdentities)
}

func TestCommonFields(t *testing.T) {
	n := &normalize.Normalizer{Actor: &models.Actor{ID: "user-1", Name: "Ada"}}
	state, err := n.Normalize(decode(t, editIndividualSnapshot), normalize.None)
	require.NoError(t, err)

	assert.Equal(t, "fix name", state.Description)
	assert.Equal(t, models.CategoryDataChange, state.Category)
	assert.Equal(t, models.IssueTypeEditIndividual, state.IssueType)
	assert.Equal(t, "user-1", state.AssignedTo, "unassigned tickets default to the actor")
	assert.Equal(t, []string{"pr-1"}, state.SelectedPaymentRecords)
	assert.Equal(t, []string{"t0", "t7"}, state.SelectedLinkedTickets)
	require.NotNil(t, state.SelectedIndividual)
	assert.Equal(t, "ind-1", state.SelectedIndividual.ID)

	snap := decode(t, `{"category": "REFERRAL", "assigned_to": "user-9"}`)
	state, err = n.Normalize(snap, normalize.None)
	require.NoError(t, err)
	assert.Equal(t, "user-9", state.AssignedTo)
	assert.Equal(t, []string{}, state.SelectedPaymentRecords)
	assert.Equal(t, []string{}, state.SelectedLinkedTickets)
}

func TestAddIndividual(t *testing.T) {
	snap := decode(t, `{
		"category": "DATA_CHANGE",
		"issue_type": "ADD_INDIVIDUAL",
		"household": {"id": "hh-1"},
		"add_individual_ticket_details": {
			"individual_data": {
				"given_name": {"value": "Ann"},
				"birth_date": {"value": "1990-01-01"},
				"flex_fields": {"shoe_size": {"value": ""}, "eye_color": {"value": "blue"}}
			}
		}
	}`)

	state, err := (&normalize.Normalizer{}).Normalize(snap, normalize.AddIndividual)
	require.NoError(t, err)
	require.NotNil(t, state.IndividualData)
	assert.Equal(t, map[string]any{"givenName": "Ann", "birthDate": "1990-01-01"}, state.IndividualData.Fields)
	assert.Equal(t, map[string]any{"shoe_size": "", "eye_color": "blue"}, state.IndividualData.FlexFields)
}

func TestEditHousehold(t *testing.T) {
	snap := decode(t, `{
		"category": "DATA_CHANGE",
		"issue_type": "EDIT_HOUSEHOLD",
		"household_data_update_ticket_details": {
			"household_data": {"size": {"value": 4}, "flex_fields": {"has_well": {"value": "YES"}}}
		}
	}`)
	n := &normalize.Normalizer{Households: fields.NewSchema([]models.FieldAttribute{
		{Name: "has_well", Type: models.FieldTypeBool, IsFlexField: true},
	})}

	state, err := n.Normalize(snap, normalize.EditHousehold)
	require.NoError(t, err)
	assert.Equal(t, []models.FieldEdit{
		{FieldName: "size", FieldValue: json.Number("4")},
		{FieldName: "has_well", FieldValue: true, IsFlexField: true},
	}, state.HouseholdDataUpdateFields)
}

func TestSchemaMismatch(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		variant normalize.Variant
		path    string
	}{
		{"missing add detail", `{"category": "DATA_CHANGE"}`, normalize.AddIndividual, "add_individual_ticket_details"},
		{"missing individual data", `{"individual_data_update_ticket_details": {}}`, normalize.EditIndividual, "individual_data_update_ticket_details.individual_data"},
		{"missing household detail", `{}`, normalize.EditHousehold, "household_data_update_ticket_details"},
		{"document without value", `{"individual_data_update_ticket_details": {"individual_data": {}, "documents": [{}]}}`, normalize.EditIndividual, "individual_data_update_ticket_details.documents[0].value"},
		{"remove without id", `{"individual_data_update_ticket_details": {"individual_data": {}, "identities_to_remove": [{"value": 5}]}}`, normalize.EditIndividual, "individual_data_update_ticket_details.identities_to_remove[0].value"},
		{"delete without individual", `{}`, normalize.DeleteIndividual, "individual"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := (&normalize.Normalizer{}).Normalize(decode(t, tt.raw), tt.variant)
			require.Error(t, err)
			assert.Nil(t, state)
			assert.True(t, errors.Is(err, normalize.ErrSchemaMismatch))

			var mismatch *normalize.SchemaMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, tt.path, mismatch.Path)
		})
	}

	_, err := (&normalize.Normalizer{}).Normalize(nil, normalize.None)
	assert.ErrorIs(t, err, normalize.ErrSchemaMismatch)
}
