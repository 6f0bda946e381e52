package coach

import "testing"

func TestWeightRange(t *testing.T) {
	tests := []struct {
		name                  string
		oneRM, pctMin, pctMax float64
		want                  Range
	}{
		{"min and max", 100, 75, 80, Range{Min: 75, Max: 80}},
		{"single percentage", 140, 70, 0, Range{Min: 98, Max: 98}},
		{"rounded to one decimal", 112.5, 82.5, 87.5, Range{Min: 92.8, Max: 98.4}},
		{"no 1rm", 0, 75, 80, Range{}},
		{"no percentage", 100, 0, 0, Range{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightRange(tt.oneRM, tt.pctMin, tt.pctMax); got != tt.want {
				t.Errorf("WeightRange(%v, %v, %v) = %+v, want %+v", tt.oneRM, tt.pctMin, tt.pctMax, got, tt.want)
			}
		})
	}
}
