package rules

import "math"

// WeightCap is the maximum combined score weight across a course.
const WeightCap = 100.0

// WeightCheck is the advisory result of a weight-total validation. The
// caller decides whether an over-cap total is a hard error or a warning.
type WeightCheck struct {
	Valid bool
	Total float64
}

// CheckWeightTotal sums the candidate weight with the weights of the other
// assignments in the course. A non-positive cap falls back to WeightCap.
// Individual weights are expected to be within 0-100 already; the negative
// total check is retained defensively.
func CheckWeightTotal(candidate float64, others []float64, cap float64) WeightCheck {
	if cap <= 0 {
		cap = WeightCap
	}
	total := candidate
	for _, w := range others {
		total += w
	}
	total = Round2(total)
	return WeightCheck{Valid: total >= 0 && total <= cap, Total: total}
}

// WeightCapError builds the terminal violation for an over-cap total.
func WeightCapError(check WeightCheck, cap float64) *Error {
	if cap <= 0 {
		cap = WeightCap
	}
	return newError(KindWeightCapExceeded, "combined score weight %.2f exceeds cap %.2f", check.Total, cap)
}

// Round2 rounds to two decimal places, the precision score weights and
// scores are stored at.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
