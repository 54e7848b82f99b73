package odds

import "math"

// ImpliedProbability converts American odds to implied probability in percent.
// Example: -150 → 60.0, +150 → 40.0. The vig is left in.
func ImpliedProbability(american float64) float64 {
	if american > 0 {
		// Underdog: 100 / (odds + 100)
		return 100.0 / (american + 100.0) * 100.0
	}
	// Favorite: |odds| / (|odds| + 100)
	abs := math.Abs(american)
	return abs / (abs + 100.0) * 100.0
}
