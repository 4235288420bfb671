package payload_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/payload"
)

func baseState(c models.Category, it models.IssueType) *models.FormState {
	return &models.FormState{
		Description:            "desc",
		Category:               c,
		IssueType:              it,
		Language:               "pl",
		SelectedHousehold:      &models.Reference{ID: "hh-1"},
		SelectedIndividual:     &models.Reference{ID: "ind-1"},
		SelectedPaymentRecords: []string{"pr-1"},
		SelectedLinkedTickets:  []string{"t0"},
	}
}

func TestAddIndividualStripsEmptyFlexFields(t *testing.T) {
	state := baseState(models.CategoryDataChange, models.IssueTypeAddIndividual)
	state.IndividualData = &models.FieldBucket{
		Fields:     map[string]any{"givenName": "Ann"},
		FlexFields: map[string]any{"a": "", "b": "x"},
	}

	in := payload.AddIndividual(payload.Required(state), state)

	require.NotNil(t, in.Extras)
	extras := in.Extras.IssueType.AddIndividualIssueTypeExtras
	require.NotNil(t, extras)
	assert.Equal(t, "hh-1", extras.Household)
	assert.Equal(t, map[string]any{"b": "x"}, extras.IndividualData.FlexFields)
	assert.Equal(t, map[string]any{"givenName": "Ann"}, extras.IndividualData.Fields)
	assert.Contains(t, state.IndividualData.FlexFields, "a", "state is not modified")
}

func TestEditIndividual(t *testing.T) {
	state := baseState(models.CategoryDataChange, models.IssueTypeEditIndividual)
	state.IndividualDataUpdateFields = []models.FieldEdit{
		{FieldName: "given_name", FieldValue: "Jan"},
		{FieldName: "shoe_size", FieldValue: "42", IsFlexField: true},
		{FieldName: "", FieldValue: "ignored"},
	}
	state.IndividualDataUpdateFieldsDocuments = []models.Document{{ID: "d1", Country: "PL", Number: "123"}}
	state.IndividualDataUpdatePaymentChannelsToRemove = []string{"p1"}

	in := payload.EditIndividual(payload.Required(state), state)

	assert.Equal(t, models.IssueTypeEditIndividual, in.IssueType)
	extras := in.Extras.IssueType.IndividualDataUpdateIssueTypeExtras
	require.NotNil(t, extras)
	assert.Equal(t, "ind-1", extras.Individual)
	assert.Equal(t, map[string]any{"givenName": "Jan"}, extras.IndividualData.Fields)
	assert.Equal(t, map[string]any{"shoe_size": "42"}, extras.IndividualData.FlexFields)
	assert.Equal(t, state.IndividualDataUpdateFieldsDocuments, extras.IndividualData.Documents)

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))

	data := wire["extras"].(map[string]any)["issueType"].(map[string]any)["individualDataUpdateIssueTypeExtras"].(map[string]any)["individualData"].(map[string]any)
	assert.Equal(t, "Jan", data["givenName"])
	assert.Equal(t, map[string]any{"shoe_size": "42"}, data["flexFields"])
	assert.Equal(t, []any{map[string]any{"id": "d1", "country": "PL", "number": "123"}}, data["documents"])
	assert.Equal(t, []any{"p1"}, data["paymentChannelsToRemove"])
	assert.Equal(t, []any{}, data["identities"])
	assert.Equal(t, "desc", wire["description"])
	assert.Equal(t, []any{"t0"}, wire["linkedTickets"])
}

func TestEditHousehold(t *testing.T) {
	state := baseState(models.CategoryDataChange, models.IssueTypeEditHousehold)
	state.HouseholdDataUpdateFields = []models.FieldEdit{
		{FieldName: "village", FieldValue: "Lipno"},
		{FieldName: "has_well", FieldValue: true, IsFlexField: true},
	}

	in := payload.EditHousehold(payload.Required(state), state)
	extras := in.Extras.IssueType.HouseholdDataUpdateIssueTypeExtras
	require.NotNil(t, extras)
	assert.Equal(t, "hh-1", extras.Household)
	assert.Equal(t, map[string]any{"village": "Lipno"}, extras.HouseholdData.Fields)
	assert.Equal(t, map[string]any{"has_well": true}, extras.HouseholdData.FlexFields)
}

func TestCategoryExtras(t *testing.T) {
	t.Run("positive feedback", func(t *testing.T) {
		state := baseState(models.CategoryPositiveFeedback, "")
		in := payload.PositiveFeedback(payload.Required(state), state)
		assert.Empty(t, in.IssueType)
		assert.Equal(t, &models.TicketExtras{Household: "hh-1", Individual: "ind-1"}, in.Extras.Category.PositiveFeedbackTicketExtras)
	})
	t.Run("negative feedback", func(t *testing.T) {
		state := baseState(models.CategoryNegativeFeedback, "")
		in := payload.NegativeFeedback(payload.Required(state), state)
		assert.NotNil(t, in.Extras.Category.NegativeFeedbackTicketExtras)
	})
	t.Run("referral", func(t *testing.T) {
		state := baseState(models.CategoryReferral, "")
		in := payload.Referral(payload.Required(state), state)
		assert.NotNil(t, in.Extras.Category.ReferralTicketExtras)
	})
	t.Run("complaint carries payment records", func(t *testing.T) {
		state := baseState(models.CategoryGrievanceComplaint, models.IssueTypePaymentComplaint)
		in := payload.GrievanceComplaint(payload.Required(state), state)
		assert.Equal(t, models.IssueTypePaymentComplaint, in.IssueType)
		assert.Equal(t, []string{"pr-1"}, in.Extras.Category.GrievanceComplaintTicketExtras.PaymentRecord)
	})
	t.Run("sensitive grievance omits payment records", func(t *testing.T) {
		state := baseState(models.CategorySensitiveGrievance, models.IssueTypeDataBreach)
		in := payload.SensitiveGrievance(payload.Required(state), state)
		assert.Equal(t, models.IssueTypeDataBreach, in.IssueType)
		extras := in.Extras.Category.SensitiveGrievanceTicketExtras
		require.NotNil(t, extras)
		assert.Empty(t, extras.PaymentRecord)
		assert.Equal(t, "ind-1", extras.Individual)
	})
	t.Run("delete individual", func(t *testing.T) {
		state := baseState(models.CategoryDataChange, models.IssueTypeDeleteIndividual)
		in := payload.DeleteIndividual(payload.Required(state), state)
		assert.Equal(t, "ind-1", in.Extras.IssueType.IndividualDeleteIssueTypeExtras.Individual)
	})
}

func TestDefaultHasNoExtras(t *testing.T) {
	state := &models.FormState{Category: models.CategorySystemFlagging, Description: "flag"}
	in := payload.Default(payload.Required(state), state)
	assert.Nil(t, in.Extras)

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"description": "flag", "category": "SYSTEM_FLAGGING", "linkedTickets": []}`, string(raw))
}
