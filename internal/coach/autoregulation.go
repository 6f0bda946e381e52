package coach

// Autoregulation thresholds on lastRPE - targetRPE. Backing off triggers one
// point over target; adding load needs two points under.
const (
	increaseAtOrBelow = -2.0
	decreaseAtOrAbove = 1.0

	increaseFactor = 1.05
	decreaseFactor = 0.95
)

// SuggestNextWeight adjusts last session's weight from the reported effort.
//
//	lastRPE - targetRPE <= -2   → +5%
//	lastRPE - targetRPE >=  1   → -5%
//	otherwise                   → unchanged
//
// The result is rounded to one decimal. A non-positive lastWeight is returned
// unchanged.
func SuggestNextWeight(lastWeight, lastRPE, targetRPE float64) float64 {
	if lastWeight <= 0 {
		return lastWeight
	}
	switch d := lastRPE - targetRPE; {
	case d <= increaseAtOrBelow:
		return round1(lastWeight * increaseFactor)
	case d >= decreaseAtOrAbove:
		return round1(lastWeight * decreaseFactor)
	default:
		return round1(lastWeight)
	}
}
