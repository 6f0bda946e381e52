package progress

import (
	"github.com/claude/liftcoach/internal/coach"
	"github.com/claude/liftcoach/internal/models"
	"github.com/google/uuid"
)

// BestSet is the heaviest set logged, ties going to more reps.
type BestSet struct {
	WeightKg float64 `json:"weight_kg"`
	Reps     int     `json:"reps"`
}

func (b BestSet) beats(other BestSet) bool {
	return b.WeightKg > other.WeightKg ||
		(b.WeightKg == other.WeightKg && b.Reps > other.Reps)
}

// ExerciseSummary aggregates every set of one exercise.
type ExerciseSummary struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
	Name       string    `json:"name"`
	TotalSets  int       `json:"total_sets"`
	BestSet    BestSet   `json:"best_set"`
	BestE1RM   float64   `json:"best_e1rm"`
	VolumeKg   float64   `json:"volume_kg"`
}

// SummarizeExercises groups sets by exercise, keeping the order in which
// exercises first appear.
func SummarizeExercises(sets []models.SetLogRow) []ExerciseSummary {
	index := make(map[uuid.UUID]int)
	var out []ExerciseSummary

	for _, s := range sets {
		i, ok := index[s.ExerciseID]
		if !ok {
			i = len(out)
			index[s.ExerciseID] = i
			out = append(out, ExerciseSummary{ExerciseID: s.ExerciseID, Name: s.ExerciseName})
		}
		sum := &out[i]
		candidate := BestSet{WeightKg: s.WeightKg, Reps: s.Reps}
		if sum.TotalSets == 0 || candidate.beats(sum.BestSet) {
			sum.BestSet = candidate
		}
		sum.TotalSets++
		sum.VolumeKg += coach.VolumeLoad(s.WeightKg, s.Reps)
	}

	for i := range out {
		out[i].BestE1RM = coach.E1RM(out[i].BestSet.WeightKg, out[i].BestSet.Reps)
	}
	return out
}
