package alpha

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/ingest"
	"github.com/claude/liftcoach/internal/models"
	"github.com/claude/liftcoach/internal/progress"
)

// Analyze parses an export and reports per-exercise summaries plus advice
// for the next session of every exercise, aiming at targetRPE. Nothing is
// stored.
func Analyze(r io.Reader, userID uuid.UUID, targetRPE float64) (*ingest.Report, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	sets, c := ToSetLogs(sessions, userID)
	report := &ingest.Report{
		SessionsParsed: len(sessions),
		SetsParsed:     c.Parsed,
		WorkingSets:    c.Working,
		RatedSets:      c.Rated,
		SkippedSets:    c.Skipped,
		TargetRPE:      targetRPE,
		Exercises:      progress.SummarizeExercises(sets),
	}
	if len(sets) == 0 {
		report.Message = "no working sets found"
		return report, nil
	}

	byExercise := make(map[uuid.UUID][]models.SetLogRow)
	for _, s := range sets {
		byExercise[s.ExerciseID] = append(byExercise[s.ExerciseID], s)
	}
	for _, ex := range report.Exercises {
		session := progress.LatestSession(byExercise[ex.ExerciseID])
		if a, ok := progress.Advise(session, progress.Prescription{TargetRPE: targetRPE}); ok {
			report.Advice = append(report.Advice, a)
		}
	}
	return report, nil
}
