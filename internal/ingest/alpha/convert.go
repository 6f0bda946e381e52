package alpha

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/models"
)

// namespace seeds the name-based IDs given to exported exercises and
// sessions, so the same export always yields the same IDs.
var namespace = uuid.MustParse("6f1c3b8e-4a2d-5e7f-9b0c-2d4e6f8a1c3e")

// ExerciseID returns the stable ID for an exercise name. Names differing
// only in case or surrounding space share an ID.
func ExerciseID(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(strings.ToLower(strings.TrimSpace(name))))
}

// sessionID is derived from the session's start time and name.
func sessionID(s models.AlphaSession) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(s.Date.Format("2006-01-02T15:04")+"|"+s.Name))
}

// Conversion counts what ToSetLogs kept and dropped.
type Conversion struct {
	Parsed  int
	Working int
	Rated   int
	Skipped int
}

// ToSetLogs flattens sessions into set logs for userID. Warm-ups and
// bodyweight-plus sets are skipped: their loads are not comparable to
// barbell or machine weight.
func ToSetLogs(sessions []models.AlphaSession, userID uuid.UUID) ([]models.SetLogRow, Conversion) {
	var (
		rows []models.SetLogRow
		c    Conversion
	)
	for _, s := range sessions {
		workoutID := sessionID(s)
		for _, ex := range s.Exercises {
			exerciseID := ExerciseID(ex.Name)
			for _, set := range ex.Sets {
				c.Parsed++
				if set.IsWarmup || set.IsBodyweightPlus {
					c.Skipped++
					continue
				}
				rpe := set.RPE()
				if rpe != nil {
					c.Rated++
				}
				c.Working++
				rows = append(rows, models.SetLogRow{
					ID:           uuid.NewSHA1(workoutID, []byte(fmt.Sprintf("%d/%d", ex.Number, set.Number))),
					WorkoutLogID: workoutID,
					UserID:       userID,
					ExerciseID:   exerciseID,
					ExerciseName: ex.Name,
					SetNum:       set.Number,
					WeightKg:     set.WeightKg,
					Reps:         set.Reps,
					RPE:          rpe,
					PerformedAt:  s.Date,
				})
			}
		}
	}
	return rows, c
}
