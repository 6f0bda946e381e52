package coach

import (
	"fmt"
	"math"
)

// The estimators accept any input. These checks are for the callers that
// take values from users: weights are finite and non-negative, reps are
// positive, RPE lies on the 0-10 scale.

// CheckWeight rejects NaN, infinite and negative weights.
func CheckWeight(name string, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("%s must be a non-negative number, got %v", name, w)
	}
	return nil
}

// CheckReps rejects zero or negative rep counts.
func CheckReps(name string, reps int) error {
	if reps <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, reps)
	}
	return nil
}

// CheckRPE rejects values outside [0, 10], NaN included.
func CheckRPE(name string, rpe float64) error {
	if !(rpe >= 0 && rpe <= 10) {
		return fmt.Errorf("%s must be within [0, 10], got %v", name, rpe)
	}
	return nil
}
