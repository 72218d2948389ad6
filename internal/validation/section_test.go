package validation

import (
	"math"
	"testing"
)

func TestInnerRadius(t *testing.T) {
	tests := []struct {
		name       string
		r0, h, tk  float64
		want       float64
	}{
		{"typical round-ended", 50, 100, 5, (100 - 10) / 100.0 * 50},
		{"zero depth guard", 50, 0, 5, 0},
		{"zero corner radius", 0, 150, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InnerRadius(tt.r0, tt.h, tt.tk)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("InnerRadius(%v, %v, %v) = %v, want %v", tt.r0, tt.h, tt.tk, got, tt.want)
			}
		})
	}
}

func TestConcreteAreaRectangular(t *testing.T) {
	got := ConcreteArea(150, 150.5, 5, 0, 0)
	want := (150 - 10.0) * (150.5 - 10.0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ConcreteArea = %v, want %v", got, want)
	}

	// A square box with sharp corners stays on the rectangular branch.
	if got := ConcreteArea(150, 150, 5, 0, 0); math.Abs(got-19600) > 1e-9 {
		t.Errorf("square box ConcreteArea = %v, want 19600", got)
	}
	if got := SteelArea(150, 150, 5, 0, 0); math.Abs(got-2900) > 1e-9 {
		t.Errorf("square box SteelArea = %v, want 2900", got)
	}
}

func TestConcreteAreaCircular(t *testing.T) {
	// π * ((200/2) - 6)²
	got := ConcreteArea(200, 200, 6, 100, InnerRadius(100, 200, 6))
	want := math.Pi * 94 * 94
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("ConcreteArea = %v, want %v", got, want)
	}
}

func TestSteelAreaRectangular(t *testing.T) {
	// 2*5*(150+150.5) - 4*25
	got := SteelArea(150, 150.5, 5, 0, 0)
	want := 2*5*(150+150.5) - 4*25.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("SteelArea = %v, want %v", got, want)
	}
}

func TestSteelAreaCircular(t *testing.T) {
	got := SteelArea(200, 200, 6, 100, InnerRadius(100, 200, 6))
	want := math.Pi * (100*100 - 94*94)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("SteelArea = %v, want %v", got, want)
	}
}

// The round-ended formulas must converge to the rectangular branch as r0
// approaches 0 and to the circular branch as b approaches h with r0 = h/2.
func TestAreaFormulaContinuity(t *testing.T) {
	const b, h, tk = 220.0, 120.0, 5.0

	t.Run("round-ended to rectangular as r0 -> 0", func(t *testing.T) {
		r0 := 1e-7
		r1 := InnerRadius(r0, h, tk)
		acRect := ConcreteArea(b, h, tk, 0, 0)
		asRect := SteelArea(b, h, tk, 0, 0)
		acRE := (b-2*tk)*(h-2*tk) - (4-math.Pi)*r1*r1
		asRE := 2*tk*(b+h) - 4*tk*tk - (4-math.Pi)*(r0*r0-r1*r1)
		if rel(acRE, acRect) > 1e-6 {
			t.Errorf("concrete area: round-ended %v vs rectangular %v", acRE, acRect)
		}
		if rel(asRE, asRect) > 1e-6 {
			t.Errorf("steel area: round-ended %v vs rectangular %v", asRE, asRect)
		}
	})

	t.Run("round-ended to circular as b -> h with r0 = h/2", func(t *testing.T) {
		d := 160.0
		bb := d + 1e-7
		r0 := d / 2
		r1 := InnerRadius(r0, d, tk)
		acCirc := ConcreteArea(d, d, tk, r0, r1)
		asCirc := SteelArea(d, d, tk, r0, r1)
		acRE := (bb-2*tk)*(d-2*tk) - (4-math.Pi)*r1*r1
		asRE := 2*tk*(bb+d) - 4*tk*tk - (4-math.Pi)*(r0*r0-r1*r1)
		if rel(acRE, acCirc) > 1e-3 {
			t.Errorf("concrete area: round-ended %v vs circular %v", acRE, acCirc)
		}
		if rel(asRE, asCirc) > 1e-3 {
			t.Errorf("steel area: round-ended %v vs circular %v", asRE, asCirc)
		}
	})
}

func rel(a, b float64) float64 {
	if b == 0 {
		return math.Abs(a)
	}
	return math.Abs(a-b) / math.Abs(b)
}
