// Package coach turns raw set performance (weight, reps, RPE) into training
// numbers: estimated maxes, next-session weights, effort feedback and volume.
//
// Every function is a pure function of its arguments. Nothing here performs
// I/O or keeps state, so callers may invoke them concurrently.
package coach

import "math"

// epleyDivisor is the rep divisor of the Epley formula: 1RM = w × (1 + reps/30).
const epleyDivisor = 30.0

// E1RM estimates a one-rep max in kg from a set of reps at weight using the
// Epley formula, rounded to one decimal place.
//
// A single rep is already a max and returns weight as-is. Non-positive weight
// or reps return 0.
func E1RM(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return round1(weight * (1 + float64(reps)/epleyDivisor))
}

// DailyPerformance is the RPE-adjusted e1RM for a single set: the estimate
// grows by (10 - rpe)% to account for reps left in the tank. RPE 10 leaves
// the E1RM untouched.
func DailyPerformance(weight float64, reps int, rpe float64) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	base := E1RM(weight, reps)
	adjustment := (10 - rpe) / 100
	return round1(base * (1 + adjustment))
}

// round1 rounds to one decimal place, halves going up (toward +Inf).
// All estimators share it so ties resolve identically everywhere.
// Comparing the fractional part avoids adding 0.5, which rounds
// 0.49999999999999994 up to 1.
func round1(x float64) float64 {
	y := x * 10
	r := math.Floor(y)
	if y-r >= 0.5 {
		r++
	}
	return r / 10
}
