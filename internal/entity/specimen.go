package entity

import (
	"github.com/structeng/cfst-extractor/constants"
)

// Specimen represents one experimental CFST data point for transfer between
// layers. Pointer fields distinguish "missing from the paper" from zero:
// FcValue, Fy, B, H, T and NExp are never defaulted — absence forces manual
// review. RRatio, E1 and E2 default to 0 when the paper omits them.
type Specimen struct {
	RefNo          string                  `json:"ref_no"`
	FcValue        *float64                `json:"fc_value"`
	FcType         *string                 `json:"fc_type,omitempty"`
	SpecimenLabel  *string                 `json:"specimen_label,omitempty"`
	Fy             *float64                `json:"fy"`
	RRatio         float64                 `json:"r_ratio"`
	Family         constants.SectionFamily `json:"family"`
	B              *float64                `json:"b"`
	H              *float64                `json:"h"`
	T              *float64                `json:"t"`
	R0             *float64                `json:"r0"`
	L              *float64                `json:"L,omitempty"`
	E1             float64                 `json:"e1"`
	E2             float64                 `json:"e2"`
	NExp           *float64                `json:"n_exp"`
	SourceEvidence *string                 `json:"source_evidence,omitempty"`

	// Derived by validation; never supplied by the extractor.
	NTheory          *float64             `json:"n_theory,omitempty"`
	Xi               *float64             `json:"xi,omitempty"`
	Zone             constants.ReviewZone `json:"zone,omitempty"`
	NeedsManualCheck bool                 `json:"needs_manual_check"`
	HasMissingData   bool                 `json:"has_missing_data"`
}

// ExtractionResult is the structured model output for one document: a
// validity verdict plus up to three groups of specimens, one per section
// family.
type ExtractionResult struct {
	IsValid bool       `json:"is_valid"`
	Reason  string     `json:"reason"`
	GroupA  []Specimen `json:"Group_A"` // square/rectangular
	GroupB  []Specimen `json:"Group_B"` // circular
	GroupC  []Specimen `json:"Group_C"` // round-ended/elliptical
}

// Specimens flattens the three groups in family order, tagging each specimen
// with its section family and the given reference identifier.
func (r *ExtractionResult) Specimens(refNo string) []Specimen {
	out := make([]Specimen, 0, len(r.GroupA)+len(r.GroupB)+len(r.GroupC))
	appendGroup := func(group []Specimen, family constants.SectionFamily) {
		for _, s := range group {
			s.Family = family
			s.RefNo = refNo
			NormalizeGeometry(&s)
			out = append(out, s)
		}
	}
	appendGroup(r.GroupA, constants.FamilyRectangular)
	appendGroup(r.GroupB, constants.FamilyCircular)
	appendGroup(r.GroupC, constants.FamilyRoundEnded)
	return out
}

// Count returns the total number of specimens across all groups.
func (r *ExtractionResult) Count() int {
	return len(r.GroupA) + len(r.GroupB) + len(r.GroupC)
}

// NormalizeGeometry enforces the per-family geometry invariants in place:
// rectangular sections have r0 == 0, circular and round-ended sections have
// r0 == h/2; circular sections mirror a single reported diameter into both
// b and h; round-ended sections keep b >= h by swapping the axes.
func NormalizeGeometry(s *Specimen) {
	switch s.Family {
	case constants.FamilyRectangular:
		zero := 0.0
		s.R0 = &zero
	case constants.FamilyCircular:
		if s.B == nil && s.H != nil {
			v := *s.H
			s.B = &v
		}
		if s.H == nil && s.B != nil {
			v := *s.B
			s.H = &v
		}
		if s.H != nil {
			r0 := *s.H / 2
			s.R0 = &r0
		}
	case constants.FamilyRoundEnded:
		if s.B != nil && s.H != nil && *s.B < *s.H {
			s.B, s.H = s.H, s.B
		}
		if s.H != nil {
			r0 := *s.H / 2
			s.R0 = &r0
		}
	}
}
