package models

import "encoding/json"

// RequiredVariables are the ticket fields every create/update mutation carries.
type RequiredVariables struct {
	Description string   `json:"description"`
	AssignedTo  string   `json:"assignedTo,omitempty"`
	Category    Category `json:"category"`
	Language    string   `json:"language,omitempty"`
	Admin       string   `json:"admin,omitempty"`
	Area        string   `json:"area,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Urgency     int      `json:"urgency,omitempty"`
	Partner     string   `json:"partner,omitempty"`
	Comments    string   `json:"comments,omitempty"`
	Programme   string   `json:"programme,omitempty"`
}

// MutationInput is the exact payload sent to the ticket transport.
type MutationInput struct {
	RequiredVariables
	IssueType     IssueType `json:"issueType,omitempty"`
	LinkedTickets []string  `json:"linkedTickets"`
	Extras        *Extras   `json:"extras,omitempty"`
}

// Extras groups category- and issue-type-specific data.
type Extras struct {
	Category  *CategoryExtras  `json:"category,omitempty"`
	IssueType *IssueTypeExtras `json:"issueType,omitempty"`
}

// CategoryExtras has at most one member set.
type CategoryExtras struct {
	PositiveFeedbackTicketExtras   *TicketExtras `json:"positiveFeedbackTicketExtras,omitempty"`
	NegativeFeedbackTicketExtras   *TicketExtras `json:"negativeFeedbackTicketExtras,omitempty"`
	ReferralTicketExtras           *TicketExtras `json:"referralTicketExtras,omitempty"`
	GrievanceComplaintTicketExtras *TicketExtras `json:"grievanceComplaintTicketExtras,omitempty"`
	SensitiveGrievanceTicketExtras *TicketExtras `json:"sensitiveGrievanceTicketExtras,omitempty"`
}

// TicketExtras links a ticket to a household, individual and payment records.
type TicketExtras struct {
	Household     string   `json:"household,omitempty"`
	Individual    string   `json:"individual,omitempty"`
	PaymentRecord []string `json:"paymentRecord,omitempty"`
}

// IssueTypeExtras has at most one member set.
type IssueTypeExtras struct {
	AddIndividualIssueTypeExtras        *AddIndividualExtras        `json:"addIndividualIssueTypeExtras,omitempty"`
	IndividualDataUpdateIssueTypeExtras *IndividualDataUpdateExtras `json:"individualDataUpdateIssueTypeExtras,omitempty"`
	HouseholdDataUpdateIssueTypeExtras  *HouseholdDataUpdateExtras  `json:"householdDataUpdateIssueTypeExtras,omitempty"`
	IndividualDeleteIssueTypeExtras     *IndividualDeleteExtras     `json:"individualDeleteIssueTypeExtras,omitempty"`
}

type AddIndividualExtras struct {
	Household      string      `json:"household,omitempty"`
	IndividualData FieldBucket `json:"individualData"`
}

type IndividualDataUpdateExtras struct {
	Individual     string               `json:"individual,omitempty"`
	IndividualData IndividualUpdateData `json:"individualData"`
}

type HouseholdDataUpdateExtras struct {
	Household     string      `json:"household,omitempty"`
	HouseholdData FieldBucket `json:"householdData"`
}

type IndividualDeleteExtras struct {
	Individual string `json:"individual,omitempty"`
}

// IndividualUpdateData is the individual-update payload: core fields,
// flex bucket and the reconciled sub-record collections, serialized flat.
type IndividualUpdateData struct {
	FieldBucket

	Documents               []Document
	DocumentsToRemove       []string
	DocumentsToEdit         []Document
	Identities              []Identity
	IdentitiesToRemove      []string
	IdentitiesToEdit        []Identity
	PaymentChannels         []PaymentChannel
	PaymentChannelsToRemove []string
	PaymentChannelsToEdit   []PaymentChannel
}

func (d IndividualUpdateData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+10)
	for k, v := range d.Fields {
		out[k] = v
	}
	flex := d.FlexFields
	if flex == nil {
		flex = map[string]any{}
	}
	out["flexFields"] = flex
	out["documents"] = emptyIfNil(d.Documents)
	out["documentsToRemove"] = emptyIfNil(d.DocumentsToRemove)
	out["documentsToEdit"] = emptyIfNil(d.DocumentsToEdit)
	out["identities"] = emptyIfNil(d.Identities)
	out["identitiesToRemove"] = emptyIfNil(d.IdentitiesToRemove)
	out["identitiesToEdit"] = emptyIfNil(d.IdentitiesToEdit)
	out["paymentChannels"] = emptyIfNil(d.PaymentChannels)
	out["paymentChannelsToRemove"] = emptyIfNil(d.PaymentChannelsToRemove)
	out["paymentChannelsToEdit"] = emptyIfNil(d.PaymentChannelsToEdit)
	return json.Marshal(out)
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
