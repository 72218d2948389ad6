package llm

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt composes the extraction instructions for the vision
// model: what a CFST specimen record is, which group each section family
// belongs to, and the formatting rules the schema enforces.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a structural engineering data extractor. You read pages of academic papers about concrete-filled steel tube (CFST) column tests and return ONLY JSON matching the provided JSON Schema.",
		"Extract one record per physical test specimen. Skip purely numerical/finite-element specimens: only laboratory test results count.",
		"Group_A holds square and rectangular sections, Group_B circular sections, Group_C round-ended (elliptical) sections.",
		"Dimensions b, h, t, r0, L are in mm; strengths fc_value and fy in MPa; ultimate capacity n_exp in kN. Convert units when the paper uses others.",
		"For circular sections report the diameter as both b and h. For round-ended sections b is the major axis and h the minor axis.",
		"Use null for any value the paper does not report. Never guess.",
		"Set is_valid to false with a short reason when the paper contains no CFST test data at all.",
		"For source_evidence, quote the table or sentence each record came from, briefly.",
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt is the per-request user message accompanying the page
// images.
func BuildUserPrompt(refNo string, pages int) string {
	return fmt.Sprintf(
		"Extract all CFST specimen test records from these %d paper pages (document: %s). Return ONLY JSON that matches the schema.",
		pages, refNo)
}
