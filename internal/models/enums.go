package models

// Category is the first-level discriminator of a grievance ticket.
type Category string

const (
	CategoryPaymentVerification Category = "PAYMENT_VERIFICATION"
	CategoryDataChange          Category = "DATA_CHANGE"
	CategorySensitiveGrievance  Category = "SENSITIVE_GRIEVANCE"
	CategoryGrievanceComplaint  Category = "GRIEVANCE_COMPLAINT"
	CategoryNegativeFeedback    Category = "NEGATIVE_FEEDBACK"
	CategoryReferral            Category = "REFERRAL"
	CategoryPositiveFeedback    Category = "POSITIVE_FEEDBACK"
	CategoryNeedsAdjudication   Category = "NEEDS_ADJUDICATION"
	CategorySystemFlagging      Category = "SYSTEM_FLAGGING"
)

// IssueType is the second-level discriminator. Only some categories branch on it.
type IssueType string

const (
	IssueTypeAddIndividual    IssueType = "ADD_INDIVIDUAL"
	IssueTypeEditIndividual   IssueType = "EDIT_INDIVIDUAL"
	IssueTypeEditHousehold    IssueType = "EDIT_HOUSEHOLD"
	IssueTypeDeleteIndividual IssueType = "DELETE_INDIVIDUAL"

	// Complaint sub-types
	IssueTypePaymentComplaint      IssueType = "PAYMENT_COMPLAINT"
	IssueTypeFSPComplaint          IssueType = "FSP_COMPLAINT"
	IssueTypeRegistrationComplaint IssueType = "REGISTRATION_COMPLAINT"
	IssueTypeOtherComplaint        IssueType = "OTHER_COMPLAINT"

	// Sensitive grievance sub-types
	IssueTypeDataBreach         IssueType = "DATA_BREACH"
	IssueTypeBribery            IssueType = "BRIBERY"
	IssueTypeFraudForgery       IssueType = "FRAUD_FORGERY"
	IssueTypeConflictOfInterest IssueType = "CONFLICT_OF_INTEREST"
)

// FieldType is the server-side type of a field attribute.
type FieldType string

const (
	FieldTypeString         FieldType = "STRING"
	FieldTypeInteger        FieldType = "INTEGER"
	FieldTypeDecimal        FieldType = "DECIMAL"
	FieldTypeDate           FieldType = "DATE"
	FieldTypeBool           FieldType = "BOOL"
	FieldTypeSelectOne      FieldType = "SELECT_ONE"
	FieldTypeSelectMany     FieldType = "SELECT_MANY"
	FieldTypeSelectMultiple FieldType = "SELECT_MULTIPLE"
	FieldTypeImage          FieldType = "IMAGE"
)

// SchemaScope selects which registry a field attribute belongs to.
type SchemaScope string

const (
	ScopeIndividual SchemaScope = "individual"
	ScopeHousehold  SchemaScope = "household"
)

// Valid reports whether the scope is a known one.
func (s SchemaScope) Valid() bool {
	return s == ScopeIndividual || s == ScopeHousehold
}
