// ticketctl runs the ticket edit pipeline offline: it normalizes a stored
// ticket snapshot into its editable form, builds the mutation a session
// would submit for it unchanged, and presents single field values the way
// the console shows them.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"github.com/unicef/hope-grievance/internal/fields"
	"github.com/unicef/hope-grievance/internal/grievance"
	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/normalize"
	"github.com/unicef/hope-grievance/internal/payload"
	"github.com/unicef/hope-grievance/internal/present"
	"github.com/unicef/hope-grievance/internal/services"
)

const usage = `Usage: ticketctl <command> [flags]

Commands:
  normalize  --snapshot FILE [--schema FILE] [--actor ID]
  build      --snapshot FILE [--schema FILE] [--actor ID]
  present    --schema FILE --scope individual|household --field NAME --value JSON [--multi-select]
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "normalize":
		return runNormalize(args[1:], out, false)
	case "build":
		return runNormalize(args[1:], out, true)
	case "present":
		return runPresent(args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func runNormalize(args []string, out io.Writer, build bool) error {
	var snapshotPath, schemaPath, actorID string
	flagSet := pflag.NewFlagSet("ticketctl", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&snapshotPath, "snapshot", "", "path to a ticket snapshot JSON file")
	flagSet.StringVar(&schemaPath, "schema", "", "path to a field schema YAML file")
	flagSet.StringVar(&actorID, "actor", "", "default assignee for unassigned tickets")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if snapshotPath == "" {
		return errors.New("--snapshot is required")
	}

	raw, err := os.ReadFile(snapshotPath)
	if err != nil {
		return err
	}
	var snap models.TicketSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	n := &normalize.Normalizer{}
	if actorID != "" {
		n.Actor = &models.Actor{ID: actorID}
	}
	if schemaPath != "" {
		if n.Individuals, err = loadSchema(schemaPath, models.ScopeIndividual); err != nil {
			return err
		}
		if n.Households, err = loadSchema(schemaPath, models.ScopeHousehold); err != nil {
			return err
		}
	}

	registry := grievance.NewRegistry()
	state, err := registry.Normalize(n, &snap)
	if err != nil {
		return err
	}

	if build {
		return writeJSON(out, registry.Build(payload.Required(state), state))
	}
	return writeJSON(out, map[string]any{
		"key":   registry.Key(snap.Category, snap.IssueType).String(),
		"view":  registry.Resolve(snap.Category, snap.IssueType).View,
		"state": state,
	})
}

func runPresent(args []string, out io.Writer) error {
	var schemaPath, scope, field, value string
	var multi bool
	flagSet := pflag.NewFlagSet("ticketctl present", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&schemaPath, "schema", "", "path to a field schema YAML file")
	flagSet.StringVar(&scope, "scope", string(models.ScopeIndividual), "schema scope")
	flagSet.StringVar(&field, "field", "", "field name")
	flagSet.StringVar(&value, "value", "null", "stored value as JSON")
	flagSet.BoolVar(&multi, "multi-select", false, "treat SELECT_ONE and SELECT_MULTIPLE as multi-choice")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if schemaPath == "" || field == "" {
		return errors.New("--schema and --field are required")
	}

	schema, err := loadSchema(schemaPath, models.SchemaScope(scope))
	if err != nil {
		return err
	}
	attr, ok := schema.Attribute(field)
	if !ok {
		return fmt.Errorf("unknown %s field %q", scope, field)
	}
	v, err := models.DecodeAny([]byte(value))
	if err != nil {
		return fmt.Errorf("decode --value: %w", err)
	}

	var opts []fields.Option
	if multi {
		opts = append(opts, fields.WithMultiSelect())
	}
	return writeJSON(out, present.Present(attr, v, opts...))
}

func loadSchema(path string, scope models.SchemaScope) (*fields.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	attrs, err := services.ParseSchemaYAML(raw, scope)
	if err != nil {
		return nil, err
	}
	return fields.NewSchema(attrs), nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
