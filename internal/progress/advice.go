package progress

import (
	"time"

	"github.com/claude/liftcoach/internal/coach"
	"github.com/claude/liftcoach/internal/models"
	"github.com/google/uuid"
)

// Prescription is what the program asks for next time. Zero percentages or
// OneRepMax mean no percent-based range is prescribed.
type Prescription struct {
	TargetRPE  float64
	OneRepMax  float64
	PercentMin float64
	PercentMax float64
}

// Advice is the next-session recommendation for one exercise.
type Advice struct {
	ExerciseID      uuid.UUID    `json:"exercise_id"`
	ExerciseName    string       `json:"exercise_name"`
	LastSessionDate string       `json:"last_session_date"`
	TopSet          BestSet      `json:"top_set"`
	TopRPE          *float64     `json:"top_rpe,omitempty"`
	TargetRPE       float64      `json:"target_rpe"`
	RPEDifference   *float64     `json:"rpe_difference,omitempty"`
	SuggestedWeight float64      `json:"suggested_weight"`
	Feedback        string       `json:"feedback,omitempty"`
	DailyE1RM       float64      `json:"daily_e1rm"`
	Range           *coach.Range `json:"prescribed_range,omitempty"`
}

// LatestSession keeps only the sets of the most recent workout in sets.
func LatestSession(sets []models.SetLogRow) []models.SetLogRow {
	var (
		latestID uuid.UUID
		latestAt time.Time
	)
	for _, s := range sets {
		if latestAt.IsZero() || s.PerformedAt.After(latestAt) {
			latestID, latestAt = s.WorkoutLogID, s.PerformedAt
		}
	}

	var out []models.SetLogRow
	for _, s := range sets {
		if s.WorkoutLogID == latestID {
			out = append(out, s)
		}
	}
	return out
}

// Advise derives the next weight from the top set of the last session.
// It reports false when session is empty.
func Advise(session []models.SetLogRow, p Prescription) (Advice, bool) {
	if len(session) == 0 {
		return Advice{}, false
	}

	top := session[0]
	for _, s := range session[1:] {
		if (BestSet{s.WeightKg, s.Reps}).beats(BestSet{top.WeightKg, top.Reps}) {
			top = s
		}
	}

	a := Advice{
		ExerciseID:      top.ExerciseID,
		ExerciseName:    top.ExerciseName,
		LastSessionDate: dayKey(top.PerformedAt),
		TopSet:          BestSet{WeightKg: top.WeightKg, Reps: top.Reps},
		TargetRPE:       p.TargetRPE,
		DailyE1RM:       coach.DailyPerformance(top.WeightKg, top.Reps, rpeOrMax(top.RPE)),
	}

	if top.RPE != nil {
		rpe := *top.RPE
		diff := rpe - p.TargetRPE
		a.TopRPE = &rpe
		a.RPEDifference = &diff
		a.Feedback = coach.RPEFeedback(rpe)
		a.SuggestedWeight = coach.SuggestNextWeight(top.WeightKg, rpe, p.TargetRPE)
	} else {
		// No effort reported: hold the weight.
		a.SuggestedWeight = coach.SuggestNextWeight(top.WeightKg, p.TargetRPE, p.TargetRPE)
	}

	if r := coach.WeightRange(p.OneRepMax, p.PercentMin, p.PercentMax); r != (coach.Range{}) {
		a.Range = &r
	}
	return a, true
}
