package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
individual:
  - name: given_name
    label_en: Given name
    type: STRING
  - name: pregnant
    label_en: Pregnant
    type: BOOL
  - name: languages
    label_en: Languages
    type: SELECT_MANY
    choices:
      - value: eng
        label_en: English
      - value: pol
        label_en: Polish
household: []
`

const testSnapshot = `{
	"category": "DATA_CHANGE",
	"issue_type": "EDIT_INDIVIDUAL",
	"description": "Fix",
	"individual": {"id": "ind-1"},
	"individual_data_update_ticket_details": {
		"individual_data": {
			"given_name": {"value": "Jan"},
			"pregnant": {"value": ""}
		}
	}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNormalizeCommand(t *testing.T) {
	snap := writeFile(t, "ticket.json", testSnapshot)
	schema := writeFile(t, "schema.yaml", testSchema)

	var out bytes.Buffer
	require.NoError(t, run([]string{"normalize", "--snapshot", snap, "--schema", schema, "--actor", "u-1"}, &out))

	var got struct {
		Key   string `json:"key"`
		View  string `json:"view"`
		State struct {
			AssignedTo string `json:"assignedTo"`
			Fields     []struct {
				FieldName  string `json:"fieldName"`
				FieldValue any    `json:"fieldValue"`
			} `json:"individualDataUpdateFields"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "DATA_CHANGE/EDIT_INDIVIDUAL", got.Key)
	assert.Equal(t, "edit-individual", got.View)
	assert.Equal(t, "u-1", got.State.AssignedTo)
	require.Len(t, got.State.Fields, 2)
	assert.Equal(t, "Jan", got.State.Fields[0].FieldValue)
	assert.Nil(t, got.State.Fields[1].FieldValue)
}

func TestBuildCommand(t *testing.T) {
	snap := writeFile(t, "ticket.json", testSnapshot)

	var out bytes.Buffer
	require.NoError(t, run([]string{"build", "--snapshot", snap}, &out))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "EDIT_INDIVIDUAL", got["issueType"])
	data := got["extras"].(map[string]any)["issueType"].(map[string]any)["individualDataUpdateIssueTypeExtras"].(map[string]any)["individualData"].(map[string]any)
	assert.Equal(t, "Jan", data["givenName"])
	assert.Equal(t, []any{}, data["documents"])
}

func TestPresentCommand(t *testing.T) {
	schema := writeFile(t, "schema.yaml", testSchema)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--field", "languages", "--value", `["eng", "pol"]`}, "English, Polish"},
		{[]string{"--field", "pregnant", "--value", `false`}, "No"},
		{[]string{"--field", "given_name"}, "-"},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		args := append([]string{"present", "--schema", schema}, tt.args...)
		require.NoError(t, run(args, &out))

		var got struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, tt.want, got.Text)
	}
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, &out))
	assert.Error(t, run([]string{"frobnicate"}, &out))
	assert.Error(t, run([]string{"normalize"}, &out))
	assert.Error(t, run([]string{"present", "--field", "x"}, &out))
	assert.NoError(t, run([]string{"help"}, &out))
}
