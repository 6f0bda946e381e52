package models

import "time"

// AlphaSession is one workout from an Alpha Progression CSV export.
type AlphaSession struct {
	Name      string
	Date      time.Time
	Duration  string
	Exercises []AlphaExercise
}

// AlphaExercise is one exercise block within a session.
type AlphaExercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []AlphaSet
}

// AlphaSet is a single warm-up or working set. RIR is -1 when the app did
// not record it.
type AlphaSet struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              float64
	IsWarmup         bool
}

// RPE converts reps-in-reserve to RPE (10 - RIR). Untracked sets and warm-ups
// have no RPE.
func (s AlphaSet) RPE() *float64 {
	if s.IsWarmup || s.RIR < 0 {
		return nil
	}
	rpe := 10 - s.RIR
	return &rpe
}
