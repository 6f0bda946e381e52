package coach

// Range is a prescribed working-weight window in kg.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// WeightRange converts a percent-of-1RM prescription into kilograms.
// percentMax <= 0 means the program gave a single percentage, in which case
// Max equals Min.
func WeightRange(oneRepMax, percentMin, percentMax float64) Range {
	if oneRepMax <= 0 || percentMin <= 0 {
		return Range{}
	}
	r := Range{Min: round1(oneRepMax * percentMin / 100)}
	if percentMax > 0 {
		r.Max = round1(oneRepMax * percentMax / 100)
	} else {
		r.Max = r.Min
	}
	return r
}
