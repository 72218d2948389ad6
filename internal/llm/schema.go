package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/structeng/cfst-extractor/internal/common"
)

// BuildExtractionJSONSchema returns the JSON-Schema (draft 2020-12 subset)
// for the model's extraction output as a generic map. We pass it to the
// model as a structured-output constraint and also validate locally before
// decoding.
func BuildExtractionJSONSchema() map[string]any {
	nullableNumber := func() map[string]any {
		return map[string]any{"type": []string{"number", "null"}}
	}
	nullableString := func() map[string]any {
		return map[string]any{"type": []string{"string", "null"}}
	}

	specimen := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"ref_no":          map[string]any{"type": "string"},
			"fc_value":        nullableNumber(),
			"fc_type":         nullableString(),
			"specimen_label":  nullableString(),
			"fy":              nullableNumber(),
			"r_ratio":         nullableNumber(),
			"b":               nullableNumber(),
			"h":               nullableNumber(),
			"t":               nullableNumber(),
			"r0":              nullableNumber(),
			"L":               nullableNumber(),
			"e1":              nullableNumber(),
			"e2":              nullableNumber(),
			"n_exp":           nullableNumber(),
			"source_evidence": nullableString(),
		},
	}
	group := map[string]any{"type": "array", "items": specimen}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"is_valid": map[string]any{"type": "boolean"},
			"reason":   map[string]any{"type": "string"},
			"Group_A":  group,
			"Group_B":  group,
			"Group_C":  group,
		},
		"required": []string{"is_valid", "reason"},
	}
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
		return fmt.Errorf("json does not match schema: %w: %w", common.ErrValidation, err)
	}
	return nil
}
