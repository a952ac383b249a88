package risk

// complianceStep maps a z-score threshold to a compliance score. The table
// is scanned from the highest threshold down; the first threshold at or
// below |z| wins.
type complianceStep struct {
	threshold float64
	score     int
}

// Stepped table for at-or-above-average amounts (z >= 0).
var complianceSteps = []complianceStep{
	{20, 10},
	{15, 15},
	{10, 20},
	{8, 25},
	{6, 35},
	{5, 42},
	{4, 50},
	{3.5, 55},
	{3, 60},
	{2.5, 68},
	{2.2, 72},
	{2, 77},
	{1.7, 82},
	{1.5, 86},
	{1.2, 90},
	{1, 93},
	{0.7, 96},
	{0.5, 98},
}

const (
	complianceFloor   = 10
	complianceCeiling = 100

	locationMismatchDeduction = 5
	unusualTimeDeduction      = 3
)

// ComplianceScore maps a signed z-score plus location/time flags to a bounded
// 10-100 score. The scale is presentation support for the explanation view;
// it never feeds back into the risk tier.
func ComplianceScore(z float64, locationMatch, unusualTime bool) int {
	var score int
	if z < 0 {
		// Below-average amounts are inherently safer.
		abs := -z
		switch {
		case abs >= 2:
			score = 98
		case abs >= 1:
			score = 96
		default:
			score = 95
		}
	} else {
		score = complianceCeiling
		for _, step := range complianceSteps {
			if z >= step.threshold {
				score = step.score
				break
			}
		}
	}

	if !locationMatch {
		score -= locationMismatchDeduction
	}
	if unusualTime {
		score -= unusualTimeDeduction
	}

	if score < complianceFloor {
		score = complianceFloor
	}
	if score > complianceCeiling {
		score = complianceCeiling
	}
	return score
}
