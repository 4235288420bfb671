package models

// Reference points at a household or individual a ticket is about. The
// individual's current sub-records are included so that an edit session can
// show them as existing rows.
type Reference struct {
	ID              string           `json:"id"`
	UnicefID        string           `json:"unicef_id,omitempty"`
	FullName        string           `json:"full_name,omitempty"`
	Documents       []Document       `json:"documents,omitempty"`
	Identities      []Identity       `json:"identities,omitempty"`
	PaymentChannels []PaymentChannel `json:"payment_channels,omitempty"`
}

// RelatedTicket is a ticket linked to another one.
type RelatedTicket struct {
	ID       string `json:"id"`
	UnicefID string `json:"unicef_id,omitempty"`
}

// TicketSnapshot is the server-side view of a grievance ticket as fetched
// once per edit session. Exactly one of the detail pointers is expected to
// be set, selected by (Category, IssueType).
type TicketSnapshot struct {
	ID              string          `json:"id"`
	UnicefID        string          `json:"unicef_id,omitempty"`
	Category        Category        `json:"category"`
	IssueType       IssueType       `json:"issue_type,omitempty"`
	Description     string          `json:"description"`
	AssignedTo      string          `json:"assigned_to,omitempty"`
	Language        string          `json:"language,omitempty"`
	Admin           string          `json:"admin,omitempty"`
	Area            string          `json:"area,omitempty"`
	Priority        int             `json:"priority,omitempty"`
	Urgency         int             `json:"urgency,omitempty"`
	Partner         string          `json:"partner,omitempty"`
	Comments        string          `json:"comments,omitempty"`
	Programme       string          `json:"programme,omitempty"`
	Household       *Reference      `json:"household,omitempty"`
	Individual      *Reference      `json:"individual,omitempty"`
	PaymentRecordID string          `json:"payment_record_id,omitempty"`
	RelatedTickets  []RelatedTicket `json:"related_tickets,omitempty"`

	AddIndividualDetail  *AddIndividualDetail  `json:"add_individual_ticket_details,omitempty"`
	EditIndividualDetail *EditIndividualDetail `json:"individual_data_update_ticket_details,omitempty"`
	EditHouseholdDetail  *EditHouseholdDetail  `json:"household_data_update_ticket_details,omitempty"`
}

// AddIndividualDetail carries the data of an individual to be added.
type AddIndividualDetail struct {
	IndividualData *FieldData `json:"individual_data"`
}

// EditIndividualDetail carries requested changes to an existing individual.
type EditIndividualDetail struct {
	IndividualData *FieldData `json:"individual_data"`

	Documents         []WrappedValue `json:"documents,omitempty"`
	DocumentsToRemove []WrappedValue `json:"documents_to_remove,omitempty"`
	DocumentsToEdit   []WrappedValue `json:"documents_to_edit,omitempty"`

	Identities         []WrappedValue `json:"identities,omitempty"`
	IdentitiesToRemove []WrappedValue `json:"identities_to_remove,omitempty"`
	IdentitiesToEdit   []WrappedValue `json:"identities_to_edit,omitempty"`

	PaymentChannels         []WrappedValue `json:"payment_channels,omitempty"`
	PaymentChannelsToRemove []WrappedValue `json:"payment_channels_to_remove,omitempty"`
	PaymentChannelsToEdit   []WrappedValue `json:"payment_channels_to_edit,omitempty"`
}

// EditHouseholdDetail carries requested changes to a household.
type EditHouseholdDetail struct {
	HouseholdData *FieldData `json:"household_data"`
}
