package labor

import "math"

// PerfectHours is the ideal labor level for a sales figure: sales / divisor.
// Zero, negative or non-finite inputs give 0.
func PerfectHours(sales, divisor float64) float64 {
	if !positive(sales) || !positive(divisor) {
		return 0
	}
	return finite(sales / divisor)
}

// DollarsPerHour is sales divided by labor hours, or 0 without labor.
func DollarsPerHour(sales, laborHours float64) float64 {
	if !positive(laborHours) || !isFinite(sales) {
		return 0
	}
	return finite(sales / laborHours)
}

func positive(v float64) bool {
	return v > 0 && isFinite(v)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finite(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}
