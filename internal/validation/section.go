// Package validation implements the closed-form physical checks applied to
// extracted specimen data: cross-sectional areas for the three geometry
// families, theoretical axial capacity, and review-zone classification of
// the experimental-to-theoretical ratio.
package validation

import "math"

// circularTol is the |b - h| tolerance below which a section is treated as
// circular.
const circularTol = 0.001

// InnerRadius computes the inner corner radius r1 = (h - 2t) / h * r0 for
// round-ended sections. Returns 0 when h is 0.
func InnerRadius(r0, h, t float64) float64 {
	if h == 0 {
		return 0
	}
	return (h - 2*t) / h * r0
}

// ConcreteArea computes the concrete core area Ac in mm².
//
// Rectangular (r0 == 0): Ac = (b - 2t)(h - 2t)
// Circular (b == h):     Ac = π((b/2) - t)²
// Round-ended:           Ac = (b - 2t)(h - 2t) - (4 - π)r1²
//
// Sharp corners (r0 == 0) always mean a rectangular box, even when b == h:
// circular sections carry r0 = h/2. The circular and rectangular branches
// are degenerate cases of the round-ended formula and agree with it at the
// boundary.
func ConcreteArea(b, h, t, r0, r1 float64) float64 {
	if r0 == 0 {
		return (b - 2*t) * (h - 2*t)
	}
	if math.Abs(b-h) < circularTol {
		ri := b/2 - t
		return math.Pi * ri * ri
	}
	return (b-2*t)*(h-2*t) - (4-math.Pi)*r1*r1
}

// SteelArea computes the steel tube area As in mm².
//
// Rectangular (r0 == 0): As = 2t(b + h) - 4t²
// Circular (b == h):     As = π((b/2)² - ((b/2) - t)²)
// Round-ended:           As = 2t(b + h) - 4t² - (4 - π)(r0² - r1²)
func SteelArea(b, h, t, r0, r1 float64) float64 {
	if r0 == 0 {
		return 2*t*(b+h) - 4*t*t
	}
	if math.Abs(b-h) < circularTol {
		ro := b / 2
		ri := ro - t
		return math.Pi * (ro*ro - ri*ri)
	}
	return 2*t*(b+h) - 4*t*t - (4-math.Pi)*(r0*r0-r1*r1)
}
