package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unicef/hope-grievance/internal/models"
)

func TestFieldDataKeepsOrderAndSplitsFlex(t *testing.T) {
	raw := `{"zeta": {"value": 1}, "alpha": {"value": "a", "previous_value": "b"}, "flex_fields": {"z": {"value": true}, "a": {}}, "mid": {}}`

	var d models.FieldData
	require.NoError(t, json.Unmarshal([]byte(raw), &d))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, d.CoreKeys())
	assert.Equal(t, []string{"z", "a"}, d.FlexKeys())
	assert.True(t, d.HasFlex)

	assert.Equal(t, json.Number("1"), d.Core["zeta"].Value)
	assert.Equal(t, "b", d.Core["alpha"].PreviousValue)
	assert.False(t, d.Core["mid"].Defined)
	assert.False(t, d.Flex["a"].Defined)
	assert.Equal(t, true, d.Flex["z"].Value)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta": {"value": 1}, "alpha": {"value": "a", "previous_value": "b"}, "mid": {}, "flex_fields": {"z": {"value": true}, "a": {}}}`, string(out))
}

func TestFieldDataRejectsBareValues(t *testing.T) {
	var d models.FieldData
	assert.Error(t, json.Unmarshal([]byte(`{"given_name": "Jan"}`), &d))
	assert.Error(t, json.Unmarshal([]byte(`["given_name"]`), &d))
}

func TestFieldDataMarshalReportsErrors(t *testing.T) {
	d := models.FieldData{Core: map[string]models.WrappedValue{"bad": models.Wrap(make(chan int))}}
	_, err := json.Marshal(d)
	assert.Error(t, err)
}

func TestCoreKeysOfBuiltData(t *testing.T) {
	d := models.FieldData{Core: map[string]models.WrappedValue{
		"b": models.Wrap(1),
		"a": models.Wrap(2),
	}}
	assert.Equal(t, []string{"a", "b"}, d.CoreKeys())
	assert.Empty(t, d.FlexKeys())
}

func TestSubRecordsAcceptBothCasings(t *testing.T) {
	var snake, camel models.PaymentChannel
	require.NoError(t, json.Unmarshal([]byte(`{"id": "p1", "bank_name": "X", "bank_account_number": "001"}`), &snake))
	require.NoError(t, json.Unmarshal([]byte(`{"id": "p1", "bankName": "X", "bankAccountNumber": "001"}`), &camel))
	assert.Equal(t, snake, camel)
	assert.Equal(t, "X", camel.BankName)

	var doc models.Document
	require.NoError(t, json.Unmarshal([]byte(`{"id": "d1", "photo_raw": "raw.jpg"}`), &doc))
	assert.Equal(t, "raw.jpg", doc.PhotoRaw)
}

func TestSubRecordsKeepUnknownKeys(t *testing.T) {
	var pc models.PaymentChannel
	require.NoError(t, json.Unmarshal([]byte(`{"id": "p1", "bank_name": "X", "account_holder_name": "Jan K", "bank_branch_name": "Main", "limit": 1000000}`), &pc))
	assert.Equal(t, "X", pc.BankName)
	assert.Equal(t, map[string]any{
		"accountHolderName": "Jan K",
		"bankBranchName":    "Main",
		"limit":             json.Number("1000000"),
	}, pc.Extra)

	b, err := json.Marshal(pc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "p1", "bankName": "X", "accountHolderName": "Jan K", "bankBranchName": "Main", "limit": 1000000}`, string(b))

	var again models.PaymentChannel
	require.NoError(t, json.Unmarshal(b, &again))
	assert.Equal(t, pc, again)

	var doc models.Document
	require.NoError(t, json.Unmarshal([]byte(`{"id": "d1", "key": "national_id", "number": "1"}`), &doc))
	assert.Equal(t, map[string]any{"key": "national_id"}, doc.Extra)

	var plain models.Identity
	require.NoError(t, json.Unmarshal([]byte(`{"id": "i1", "partner": "WFP"}`), &plain))
	assert.Equal(t, models.Identity{ID: "i1", Partner: "WFP"}, plain)

	assert.Error(t, json.Unmarshal([]byte(`["d1"]`), &doc))
}

func TestFieldBucketFlattens(t *testing.T) {
	b := models.FieldBucket{Fields: map[string]any{"givenName": "Ann"}}
	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"givenName": "Ann", "flexFields": {}}`, string(out))

	var back models.FieldBucket
	require.NoError(t, json.Unmarshal([]byte(`{"givenName": "Ann", "flexFields": {"shoe_size": 42}}`), &back))
	assert.Equal(t, "Ann", back.Fields["givenName"])
	assert.Equal(t, json.Number("42"), back.FlexFields["shoe_size"])
}

func TestSetFieldEdit(t *testing.T) {
	edits := []models.FieldEdit{{FieldName: "a", FieldValue: 1}}
	edits = models.SetFieldEdit(edits, models.FieldEdit{FieldName: "a", FieldValue: 2})
	edits = models.SetFieldEdit(edits, models.FieldEdit{FieldName: "a", FieldValue: 3, IsFlexField: true})
	assert.Equal(t, []models.FieldEdit{
		{FieldName: "a", FieldValue: 2},
		{FieldName: "a", FieldValue: 3, IsFlexField: true},
	}, edits)
}
