package validation

import (
	"math"
	"testing"

	"github.com/structeng/cfst-extractor/constants"
)

func fp(v float64) *float64 { return &v }

// Worked rectangular example: 150x150x5 tube, C35 concrete, Q345 steel.
// Ac = 140*140 = 19600, As = 2*5*300 - 100 = 2900,
// Nt = (2900*345 + 19600*35)/1000 = 1686.5 kN.
func TestTheoreticalCapacityRectangular(t *testing.T) {
	nt := TheoreticalCapacity(fp(35), fp(345), fp(150), fp(150), fp(5), fp(0))
	if nt == nil {
		t.Fatal("TheoreticalCapacity returned nil for complete inputs")
	}
	if math.Abs(*nt-1686.5) > 1e-9 {
		t.Errorf("NTheory = %v, want 1686.5", *nt)
	}

	xi := ValidationCoefficient(fp(850), nt)
	if xi == nil || math.Abs(*xi-850.0/1686.5) > 1e-12 {
		t.Errorf("xi = %v, want %v", xi, 850.0/1686.5)
	}
	if Zone(xi) != constants.ZoneYellow {
		t.Errorf("Zone(%v) = %v, want YELLOW", *xi, Zone(xi))
	}
}

func TestTheoreticalCapacityMissingInput(t *testing.T) {
	if nt := TheoreticalCapacity(nil, fp(345), fp(150), fp(150), fp(5), fp(0)); nt != nil {
		t.Errorf("expected nil capacity with missing fc, got %v", *nt)
	}
	if nt := TheoreticalCapacity(fp(35), fp(345), fp(150), fp(150), nil, fp(0)); nt != nil {
		t.Errorf("expected nil capacity with missing t, got %v", *nt)
	}
}

func TestValidationCoefficient(t *testing.T) {
	if xi := ValidationCoefficient(fp(850), fp(1700)); xi == nil || math.Abs(*xi-0.5) > 1e-12 {
		t.Errorf("xi = %v, want 0.5", xi)
	}
	if xi := ValidationCoefficient(nil, fp(1700)); xi != nil {
		t.Errorf("expected nil xi with missing n_exp, got %v", *xi)
	}
	if xi := ValidationCoefficient(fp(850), nil); xi != nil {
		t.Errorf("expected nil xi with missing n_theory, got %v", *xi)
	}
	if xi := ValidationCoefficient(fp(850), fp(0)); xi == nil || !math.IsInf(*xi, 1) {
		t.Errorf("expected +Inf xi for zero theory, got %v", xi)
	}
}

func TestZoneBoundaries(t *testing.T) {
	tests := []struct {
		xi   float64
		want constants.ReviewZone
	}{
		{0.8, constants.ZoneYellow},
		{0.81, constants.ZoneGreen},
		{2.49, constants.ZoneGreen},
		{2.5, constants.ZoneYellow},
		{10.0, constants.ZoneYellow},
		{10.01, constants.ZoneRed},
		{0.1, constants.ZoneYellow},
		{0.099, constants.ZoneRed},
		{math.Inf(1), constants.ZoneRed},
	}
	for _, tt := range tests {
		if got := Zone(&tt.xi); got != tt.want {
			t.Errorf("Zone(%v) = %v, want %v", tt.xi, got, tt.want)
		}
	}
}

func TestZoneUnavailable(t *testing.T) {
	if got := Zone(nil); got != constants.ZoneNone {
		t.Errorf("Zone(nil) = %v, want NONE", got)
	}
	nan := math.NaN()
	if got := Zone(&nan); got != constants.ZoneNone {
		t.Errorf("Zone(NaN) = %v, want NONE", got)
	}
	if !NeedsManualCheck(nil) {
		t.Error("missing xi must need manual check")
	}
	if !NeedsManualCheck(&nan) {
		t.Error("NaN xi must need manual check")
	}
}
