package services

import (
	"fmt"

	"github.com/unicef/hope-grievance/internal/caseconv"
	"github.com/unicef/hope-grievance/internal/fields"
	"github.com/unicef/hope-grievance/internal/models"
)

// Validator checks a form state before submit. Messages are attached to
// form keys and never change the state's shape.
type Validator interface {
	Validate(state *models.FormState, individuals, households *fields.Schema) models.FieldErrors
}

// RequiredFieldsValidator rejects empty required values.
type RequiredFieldsValidator struct{}

func (RequiredFieldsValidator) Validate(state *models.FormState, individuals, households *fields.Schema) models.FieldErrors {
	errs := models.FieldErrors{}
	if state.Description == "" {
		errs.Add("description", "Description is required")
	}

	checkEdits := func(key string, edits []models.FieldEdit, schema *fields.Schema) {
		for i, e := range edits {
			if e.FieldName == "" {
				errs.Add(fmt.Sprintf("%s[%d].fieldName", key, i), "Field is required")
				continue
			}
			attr, ok := schema.Attribute(e.FieldName)
			if ok && attr.Required && isEmpty(e.FieldValue) {
				errs.Add(fmt.Sprintf("%s[%d].fieldValue", key, i), attr.LabelEn+" is required")
			}
		}
	}
	checkEdits("individualDataUpdateFields", state.IndividualDataUpdateFields, individuals)
	checkEdits("householdDataUpdateFields", state.HouseholdDataUpdateFields, households)

	if state.IndividualData != nil {
		for _, attr := range individuals.Required() {
			var v any
			if attr.IsFlexField {
				v = state.IndividualData.FlexFields[attr.Name]
			} else {
				v = state.IndividualData.Fields[caseconv.CamelCase(attr.Name)]
			}
			if isEmpty(v) {
				errs.Add("individualData."+attr.Name, attr.LabelEn+" is required")
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	}
	return false
}
