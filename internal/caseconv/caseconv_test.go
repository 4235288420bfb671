package caseconv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unicef/hope-grievance/internal/caseconv"
)

func TestCamelCase(t *testing.T) {
	cases := map[string]string{
		"given_name":          "givenName",
		"GIVEN_NAME":          "givenName",
		"bank_account_number": "bankAccountNumber",
		"bankAccountNumber":   "bankAccountNumber",
		"photo_raw":           "photoRaw",
		"sex":                 "sex",
		"__birth--date__":     "birthDate",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, caseconv.CamelCase(in), "input %q", in)
	}
}

func TestCamelKeys_TopLevelOnly(t *testing.T) {
	in := map[string]any{
		"full_name":   "Jan Kowalski",
		"flex_fields": map[string]any{"shoe_size": "42"},
	}
	out := caseconv.CamelKeys(in)

	assert.Equal(t, "Jan Kowalski", out["fullName"])
	assert.Equal(t, map[string]any{"shoe_size": "42"}, out["flexFields"])
	assert.NotContains(t, out, "full_name")
	assert.Nil(t, caseconv.CamelKeys(nil))
}
