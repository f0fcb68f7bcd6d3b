package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildDraftJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. The serialized draft is validated against it before it crosses
// the persistence boundary.
func BuildDraftJSONSchema() map[string]any {
	money := map[string]any{"type": "number", "minimum": 0.0}
	props := map[string]any{
		"customer_name":  map[string]any{"type": "string", "minLength": 1},
		"customer_phone": map[string]any{"type": "string", "minLength": 1},
		"bike_model":     map[string]any{"type": "string", "minLength": 1},
		"work_required":  map[string]any{"type": "string"},
		"work_done":      map[string]any{"type": "string"},
		"labor_cost":     money,
		"parts_cost":     money,
		"total_cost":     money,
		"notes":          map[string]any{"type": "string"},
	}
	// Every field is always present in a draft; there is no absent shape.
	required := []string{
		"customer_name", "customer_phone", "bike_model",
		"work_required", "work_done",
		"labor_cost", "parts_cost", "total_cost", "notes",
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// ValidateDraft serializes the draft and validates it against the draft schema.
func ValidateDraft(draft JobDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	return ValidateJSONAgainstSchema(BuildDraftJSONSchema(), data)
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
