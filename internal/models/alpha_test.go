package models

import "testing"

// TestAlphaSetRPE verifies the RIR to RPE conversion and the untracked sentinel.
func TestAlphaSetRPE(t *testing.T) {
	tests := []struct {
		name string
		set  AlphaSet
		want *float64
	}{
		{"failure", AlphaSet{RIR: 0}, ptr(10)},
		{"one in reserve", AlphaSet{RIR: 1}, ptr(9)},
		{"half rep in reserve", AlphaSet{RIR: 0.5}, ptr(9.5)},
		{"untracked", AlphaSet{RIR: -1}, nil},
		{"warmup", AlphaSet{RIR: 2, IsWarmup: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.set.RPE()
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Errorf("RPE() = %v, want %v", got, tt.want)
			case *got != *tt.want:
				t.Errorf("RPE() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func ptr(f float64) *float64 { return &f }
