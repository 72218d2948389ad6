package validation

import (
	"math"

	"github.com/structeng/cfst-extractor/constants"
)

// Review-zone thresholds for the validation coefficient xi. These are the
// empirically chosen constants from the source dataset methodology; they are
// deliberately literal, not derived.
const (
	greenLow  = 0.8
	greenHigh = 2.5
	redLow    = 0.1
	redHigh   = 10.0
)

// TheoreticalCapacity computes Nt = (As*fy + Ac*fc) / 1000 in kN.
// Returns nil if any input is missing: capacity cannot be estimated without
// both strengths and the full geometry.
func TheoreticalCapacity(fcValue, fy, b, h, t, r0 *float64) *float64 {
	if fcValue == nil || fy == nil || b == nil || h == nil || t == nil || r0 == nil {
		return nil
	}
	r1 := InnerRadius(*r0, *h, *t)
	ac := ConcreteArea(*b, *h, *t, *r0, r1)
	as := SteelArea(*b, *h, *t, *r0, r1)
	// MPa is N/mm², so As*fy + Ac*fc is in N.
	nt := (as**fy + ac**fcValue) / 1000
	return &nt
}

// ValidationCoefficient computes xi = nExp / nTheory. Returns nil if either
// input is missing, and +Inf when the theoretical capacity is zero.
func ValidationCoefficient(nExp, nTheory *float64) *float64 {
	if nExp == nil || nTheory == nil {
		return nil
	}
	var xi float64
	if *nTheory == 0 {
		xi = math.Inf(1)
	} else {
		xi = *nExp / *nTheory
	}
	return &xi
}

// Zone classifies a validation coefficient:
//
//	Green:  0.8 < xi < 2.5 — accept without review
//	Red:    xi > 10 or xi < 0.1 — likely unit/order-of-magnitude error
//	Yellow: everything else finite — manual review
//	None:   nil or NaN xi — no classification possible
func Zone(xi *float64) constants.ReviewZone {
	if xi == nil || math.IsNaN(*xi) {
		return constants.ZoneNone
	}
	v := *xi
	switch {
	case v > greenLow && v < greenHigh:
		return constants.ZoneGreen
	case v > redHigh || v < redLow:
		return constants.ZoneRed
	default:
		return constants.ZoneYellow
	}
}

// NeedsManualCheck reports whether a coefficient requires human review.
// Only the green zone is accepted as-is; a missing coefficient is treated
// conservatively as needing review.
func NeedsManualCheck(xi *float64) bool {
	return Zone(xi) != constants.ZoneGreen
}
