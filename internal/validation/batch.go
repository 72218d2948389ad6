package validation

import (
	"math"

	"github.com/structeng/cfst-extractor/constants"
	"github.com/structeng/cfst-extractor/internal/entity"
)

// Summary aggregates the validation outcome of one batch.
type Summary struct {
	Total            int     `json:"total_specimens"`
	NeedsManualCheck int     `json:"needs_manual_check"`
	GreenZone        int     `json:"green_zone"`
	YellowZone       int     `json:"yellow_zone"`
	RedZone          int     `json:"red_zone"`
	AvgXi            float64 `json:"avg_xi"`
	MinXi            float64 `json:"min_xi"`
	MaxXi            float64 `json:"max_xi"`
}

// ValidateBatch annotates every specimen with its derived validation fields:
// HasMissingData, NTheory, Xi, Zone and NeedsManualCheck. Records are never
// dropped or reordered, and the input slice is not modified. Missing critical
// data always forces manual review regardless of the zone math.
func ValidateBatch(specimens []entity.Specimen) []entity.Specimen {
	out := make([]entity.Specimen, len(specimens))
	copy(out, specimens)
	for i := range out {
		s := &out[i]
		s.HasMissingData = s.FcValue == nil || s.Fy == nil ||
			s.B == nil || s.H == nil || s.T == nil || s.NExp == nil
		s.NTheory = TheoreticalCapacity(s.FcValue, s.Fy, s.B, s.H, s.T, s.R0)
		s.Xi = ValidationCoefficient(s.NExp, s.NTheory)
		s.Zone = Zone(s.Xi)
		s.NeedsManualCheck = NeedsManualCheck(s.Xi) || s.HasMissingData
	}
	return out
}

// Summarize computes aggregate statistics over an already validated batch.
// Specimens without a coefficient count toward the yellow bucket the same
// way the zone classifier leaves them out of green and red.
func Summarize(specimens []entity.Specimen) Summary {
	sum := Summary{Total: len(specimens)}
	if len(specimens) == 0 {
		return sum
	}
	var xiSum float64
	xiCount := 0
	sum.MinXi = math.Inf(1)
	sum.MaxXi = math.Inf(-1)
	for _, s := range specimens {
		if s.NeedsManualCheck {
			sum.NeedsManualCheck++
		}
		switch s.Zone {
		case constants.ZoneGreen:
			sum.GreenZone++
		case constants.ZoneRed:
			sum.RedZone++
		default:
			sum.YellowZone++
		}
		if s.Xi != nil && !math.IsNaN(*s.Xi) && !math.IsInf(*s.Xi, 0) {
			xiSum += *s.Xi
			xiCount++
			sum.MinXi = math.Min(sum.MinXi, *s.Xi)
			sum.MaxXi = math.Max(sum.MaxXi, *s.Xi)
		}
	}
	if xiCount > 0 {
		sum.AvgXi = xiSum / float64(xiCount)
	} else {
		sum.MinXi, sum.MaxXi = 0, 0
	}
	return sum
}
