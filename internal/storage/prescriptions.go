package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/liftcoach/internal/models"
)

// LatestPrescription returns the program prescription for an exercise taken
// from the template of the user's most recent templated workout that logged
// it. When a template lists the exercise more than once the first slot wins.
func (db *DB) LatestPrescription(ctx context.Context, userID, exerciseID uuid.UUID) (*models.PrescriptionRow, error) {
	var r models.PrescriptionRow
	var notes *string
	err := db.Pool.QueryRow(ctx, `
		SELECT te.template_id, te.exercise_id, t.week_num, t.day_num, te.sets_planned,
		       te.reps_target, te.rpe_target, te.percent_1rm_min, te.percent_1rm_max, te.notes
		FROM template_exercises te
		JOIN workout_templates t ON t.id = te.template_id
		WHERE te.exercise_id = $2 AND te.template_id = (
			SELECT w.template_id FROM workout_logs w
			JOIN set_logs s ON s.workout_log_id = w.id
			WHERE w.user_id = $1 AND s.exercise_id = $2 AND w.template_id IS NOT NULL
			ORDER BY w.started_at DESC
			LIMIT 1
		)
		ORDER BY te.order_index ASC
		LIMIT 1
	`, userID, exerciseID).Scan(&r.TemplateID, &r.ExerciseID, &r.WeekNum, &r.DayNum, &r.SetsPlanned,
		&r.RepsTarget, &r.RPETarget, &r.PercentMin, &r.PercentMax, &notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying prescription: %w", err)
	}
	if notes != nil {
		r.Notes = *notes
	}
	return &r, nil
}
