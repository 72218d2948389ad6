package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/structeng/cfst-extractor/internal/common"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"is_valid": true}`, `{"is_valid": true}`},
		{"json fence", "```json\n{\"is_valid\": true}\n```", `{"is_valid": true}`},
		{"plain fence", "```\n{\"is_valid\": true}\n```", `{"is_valid": true}`},
		{"surrounding whitespace", "  \n```json\n{}\n```  ", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(StripCodeFences([]byte(tt.in))); got != tt.want {
				t.Errorf("StripCodeFences = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeExtractionJSON(t *testing.T) {
	raw := []byte(`{
		"is_valid": true,
		"reason": "ok",
		"confidence": 0.9,
		"Group_A": [{
			"specimen_label": "S-1",
			"fy": "345.0",
			"fc_value": "40 MPa",
			"b": 150,
			"t": "",
			"n_exp": "not reported",
			"notes": "extra"
		}]
	}`)

	out, repairs, err := NormalizeExtractionJSON(raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(repairs) == 0 {
		t.Fatal("expected repairs to be recorded")
	}

	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["confidence"]; ok {
		t.Error("unknown top-level key survived")
	}
	item := m["Group_A"].([]any)[0].(map[string]any)
	if _, ok := item["notes"]; ok {
		t.Error("unknown specimen key survived")
	}
	if got := item["fy"]; got != 345.0 {
		t.Errorf("fy = %v (%T), want 345.0 as number", got, got)
	}
	if got := item["fc_value"]; got != 40.0 {
		t.Errorf("fc_value = %v, want 40 (unit text stripped)", got)
	}
	if item["t"] != nil {
		t.Errorf("empty-string t = %v, want null", item["t"])
	}
	if item["n_exp"] != nil {
		t.Errorf("unparseable n_exp = %v, want null", item["n_exp"])
	}
	if got := item["b"]; got != 150.0 {
		t.Errorf("untouched numeric b = %v, want 150", got)
	}

	// Repaired output must satisfy the strict schema.
	if err := ValidateJSONAgainstSchema(BuildExtractionJSONSchema(), out); err != nil {
		t.Errorf("repaired JSON fails schema: %v", err)
	}
}

func TestNormalizeExtractionJSONBadInput(t *testing.T) {
	if _, _, err := NormalizeExtractionJSON([]byte("not json"), nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSchemaRejectsWrongTypes(t *testing.T) {
	schema := BuildExtractionJSONSchema()
	bad := []byte(`{"is_valid": "yes", "reason": "x"}`)
	err := ValidateJSONAgainstSchema(schema, bad)
	if err == nil {
		t.Error("string is_valid should fail validation")
	}
	if !errors.Is(err, common.ErrValidation) {
		t.Errorf("schema failure should wrap ErrValidation, got: %v", err)
	}
	good := []byte(`{"is_valid": true, "reason": "x", "Group_B": [{"b": 114.3, "h": 114.3, "fy": null}]}`)
	if err := ValidateJSONAgainstSchema(schema, good); err != nil {
		t.Errorf("valid document rejected: %v", err)
	}
}
