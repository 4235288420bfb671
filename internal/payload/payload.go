// Package payload assembles the mutation input sent to the ticket transport
// from an edit session's form state. It is the inverse of package normalize.
package payload

import (
	"github.com/unicef/hope-grievance/internal/caseconv"
	"github.com/unicef/hope-grievance/internal/models"
)

// Func builds a mutation input for one (category, issueType) variant.
// Builders never modify state.
type Func func(required models.RequiredVariables, state *models.FormState) models.MutationInput

// Required extracts the variables every mutation carries.
func Required(state *models.FormState) models.RequiredVariables {
	return models.RequiredVariables{
		Description: state.Description,
		AssignedTo:  state.AssignedTo,
		Category:    state.Category,
		Language:    state.Language,
		Admin:       state.Admin,
		Area:        state.Area,
		Priority:    state.Priority,
		Urgency:     state.Urgency,
		Partner:     state.Partner,
		Comments:    state.Comments,
		Programme:   state.Programme,
	}
}

// Default carries no category-specific extras.
func Default(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	return models.MutationInput{
		RequiredVariables: required,
		LinkedTickets:     linkedTickets(state),
	}
}

func PositiveFeedback(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	in := Default(required, state)
	in.Extras = &models.Extras{Category: &models.CategoryExtras{
		PositiveFeedbackTicketExtras: subjectExtras(state),
	}}
	return in
}

func NegativeFeedback(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	in := Default(required, state)
	in.Extras = &models.Extras{Category: &models.CategoryExtras{
		NegativeFeedbackTicketExtras: subjectExtras(state),
	}}
	return in
}

func Referral(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	in := Default(required, state)
	in.Extras = &models.Extras{Category: &models.CategoryExtras{
		ReferralTicketExtras: subjectExtras(state),
	}}
	return in
}

// GrievanceComplaint links household, individual and payment records.
func GrievanceComplaint(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	in := Default(required, state)
	in.IssueType = state.IssueType
	extras := subjectExtras(state)
	if len(state.SelectedPaymentRecords) > 0 {
		extras.PaymentRecord = append([]string(nil), state.SelectedPaymentRecords...)
	}
	in.Extras = &models.Extras{Category: &models.CategoryExtras{
		GrievanceComplaintTicketExtras: extras,
	}}
	return in
}

// SensitiveGrievance links household and individual but never payment records.
func SensitiveGrievance(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	in := Default(required, state)
	in.IssueType = state.IssueType
	in.Extras = &models.Extras{Category: &models.CategoryExtras{
		SensitiveGrievanceTicketExtras: subjectExtras(state),
	}}
	return in
}

// AddIndividual drops flex fields whose value is the empty string: omission
// means "leave unset" on the server.
func AddIndividual(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	in := Default(required, state)
	in.IssueType = state.IssueType

	data := models.FieldBucket{Fields: map[string]any{}, FlexFields: map[string]any{}}
	if state.IndividualData != nil {
		for k, v := range state.IndividualData.Fields {
			data.Fields[k] = v
		}
		for k, v := range state.IndividualData.FlexFields {
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			data.FlexFields[k] = v
		}
	}

	in.Extras = &models.Extras{IssueType: &models.IssueTypeExtras{
		AddIndividualIssueTypeExtras: &models.AddIndividualExtras{
			Household:      refID(state.SelectedHousehold),
			IndividualData: data,
		},
	}}
	return in
}

// EditIndividual re-partitions the field edits into core and flex buckets
// and attaches the reconciled sub-record collections.
func EditIndividual(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	in := Default(required, state)
	in.IssueType = state.IssueType

	data := models.IndividualUpdateData{
		FieldBucket:             partition(state.IndividualDataUpdateFields),
		Documents:               state.IndividualDataUpdateFieldsDocuments,
		DocumentsToRemove:       state.IndividualDataUpdateDocumentsToRemove,
		DocumentsToEdit:         state.IndividualDataUpdateDocumentsToEdit,
		Identities:              state.IndividualDataUpdateFieldsIdentities,
		IdentitiesToRemove:      state.IndividualDataUpdateIdentitiesToRemove,
		IdentitiesToEdit:        state.IndividualDataUpdateIdentitiesToEdit,
		PaymentChannels:         state.IndividualDataUpdateFieldsPaymentChannels,
		PaymentChannelsToRemove: state.IndividualDataUpdatePaymentChannelsToRemove,
		PaymentChannelsToEdit:   state.IndividualDataUpdatePaymentChannelsToEdit,
	}

	in.Extras = &models.Extras{IssueType: &models.IssueTypeExtras{
		IndividualDataUpdateIssueTypeExtras: &models.IndividualDataUpdateExtras{
			Individual:     refID(state.SelectedIndividual),
			IndividualData: data,
		},
	}}
	return in
}

// EditHousehold is EditIndividual without sub-record collections.
func EditHousehold(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	in := Default(required, state)
	in.IssueType = state.IssueType
	in.Extras = &models.Extras{IssueType: &models.IssueTypeExtras{
		HouseholdDataUpdateIssueTypeExtras: &models.HouseholdDataUpdateExtras{
			Household:     refID(state.SelectedHousehold),
			HouseholdData: partition(state.HouseholdDataUpdateFields),
		},
	}}
	return in
}

func DeleteIndividual(required models.RequiredVariables, state *models.FormState) models.MutationInput {
	in := Default(required, state)
	in.IssueType = state.IssueType
	in.Extras = &models.Extras{IssueType: &models.IssueTypeExtras{
		IndividualDeleteIssueTypeExtras: &models.IndividualDeleteExtras{
			Individual: refID(state.SelectedIndividual),
		},
	}}
	return in
}

// partition camel-cases core field names; flex names are schema
// identifiers and stay as they are. Edits without a name are skipped.
func partition(edits []models.FieldEdit) models.FieldBucket {
	b := models.FieldBucket{Fields: map[string]any{}, FlexFields: map[string]any{}}
	for _, e := range edits {
		if e.FieldName == "" {
			continue
		}
		if e.IsFlexField {
			b.FlexFields[e.FieldName] = e.FieldValue
			continue
		}
		b.Fields[caseconv.CamelCase(e.FieldName)] = e.FieldValue
	}
	return b
}

func subjectExtras(state *models.FormState) *models.TicketExtras {
	return &models.TicketExtras{
		Household:  refID(state.SelectedHousehold),
		Individual: refID(state.SelectedIndividual),
	}
}

func linkedTickets(state *models.FormState) []string {
	return append([]string{}, state.SelectedLinkedTickets...)
}

func refID(r *models.Reference) string {
	if r == nil {
		return ""
	}
	return r.ID
}
