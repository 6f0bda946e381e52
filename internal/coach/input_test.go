package coach

import (
	"math"
	"testing"
)

// TestInputChecks verifies the boundary checks accept the valid domain and
// reject everything else.
func TestInputChecks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		ok   bool
	}{
		{"weight zero", CheckWeight("weight", 0), true},
		{"weight 102.5", CheckWeight("weight", 102.5), true},
		{"weight negative", CheckWeight("weight", -1), false},
		{"weight NaN", CheckWeight("weight", math.NaN()), false},
		{"weight Inf", CheckWeight("weight", math.Inf(1)), false},
		{"reps one", CheckReps("reps", 1), true},
		{"reps zero", CheckReps("reps", 0), false},
		{"rpe zero", CheckRPE("rpe", 0), true},
		{"rpe ten", CheckRPE("rpe", 10), true},
		{"rpe above", CheckRPE("rpe", 10.5), false},
		{"rpe below", CheckRPE("rpe", -0.5), false},
		{"rpe NaN", CheckRPE("rpe", math.NaN()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err == nil) != tt.ok {
				t.Errorf("err = %v, want ok=%v", tt.err, tt.ok)
			}
		})
	}
}
