package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// specimen fields the schema types as numbers; models occasionally return
// them as strings ("345.0") or unit-bearing text ("345 MPa").
var numericFields = []string{
	"fc_value", "fy", "r_ratio", "b", "h", "t", "r0", "L", "e1", "e2", "n_exp",
}

var groupKeys = []string{"Group_A", "Group_B", "Group_C"}

// StripCodeFences removes a markdown ```json ... ``` wrapper if the model
// ignored the JSON-only instruction.
func StripCodeFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[3:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}

// NormalizeExtractionJSON repairs common model output defects so the
// document can still validate against the strict schema:
//   - numeric fields returned as strings are coerced to numbers
//   - empty/"null" strings and unparseable numerics become null
//   - unknown keys are removed (additionalProperties is false)
//
// Returns the repaired JSON and a list of the repairs made.
func NormalizeExtractionJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var repairs []string

	allowedTop := map[string]struct{}{
		"is_valid": {}, "reason": {}, "Group_A": {}, "Group_B": {}, "Group_C": {},
	}
	for k := range m {
		if _, ok := allowedTop[k]; !ok {
			delete(m, k)
			repairs = append(repairs, k+"(unknown)")
		}
	}

	allowedSpecimen := map[string]struct{}{
		"ref_no": {}, "fc_value": {}, "fc_type": {}, "specimen_label": {},
		"fy": {}, "r_ratio": {}, "b": {}, "h": {}, "t": {}, "r0": {},
		"L": {}, "e1": {}, "e2": {}, "n_exp": {}, "source_evidence": {},
	}

	for _, gk := range groupKeys {
		items, ok := m[gk].([]any)
		if !ok {
			continue
		}
		for i, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			for k := range obj {
				if _, allowed := allowedSpecimen[k]; !allowed {
					delete(obj, k)
					repairs = append(repairs, fmt.Sprintf("%s[%d].%s(unknown)", gk, i, k))
				}
			}
			for _, nf := range numericFields {
				v, present := obj[nf]
				if !present {
					continue
				}
				s, isString := v.(string)
				if !isString {
					continue
				}
				s = strings.TrimSpace(s)
				if s == "" || strings.EqualFold(s, "null") {
					obj[nf] = nil
					repairs = append(repairs, fmt.Sprintf("%s[%d].%s(empty)", gk, i, nf))
					continue
				}
				if f, err := strconv.ParseFloat(strings.Fields(s)[0], 64); err == nil {
					obj[nf] = f
					repairs = append(repairs, fmt.Sprintf("%s[%d].%s(coerced)", gk, i, nf))
				} else {
					obj[nf] = nil
					repairs = append(repairs, fmt.Sprintf("%s[%d].%s(unparseable)", gk, i, nf))
				}
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, repairs, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(repairs) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "repairs", repairs)
	}
	return out, repairs, nil
}
