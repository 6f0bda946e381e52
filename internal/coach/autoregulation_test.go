package coach

import "testing"

func TestSuggestNextWeight(t *testing.T) {
	tests := []struct {
		name                           string
		lastWeight, lastRPE, targetRPE float64
		want                           float64
	}{
		{"two under target increases", 100, 6, 8, 105},
		{"well under target increases", 100, 5, 9, 105},
		{"1.9 under target maintains", 100, 6.1, 8, 100},
		{"one under target maintains", 100, 7, 8, 100},
		{"on target maintains", 100, 8, 8, 100},
		{"half over target maintains", 100, 8.5, 8, 100},
		{"one over target decreases", 100, 9, 8, 95},
		{"1.5 over target decreases", 100, 9.5, 8, 95},
		{"increase is rounded", 82.5, 6, 8, 86.6},
		{"decrease is rounded", 82.5, 10, 8, 78.4},
		{"maintain is rounded", 82.46, 8, 8, 82.5},
		{"zero baseline passes through", 0, 5, 8, 0},
		{"negative baseline passes through", -12.34, 5, 8, -12.34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestNextWeight(tt.lastWeight, tt.lastRPE, tt.targetRPE)
			if got != tt.want {
				t.Errorf("SuggestNextWeight(%v, %v, %v) = %v, want %v",
					tt.lastWeight, tt.lastRPE, tt.targetRPE, got, tt.want)
			}
		})
	}
}
