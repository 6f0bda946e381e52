package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/liftcoach/internal/models"
)

// QuerySetLogs returns a user's logged sets whose workout started within
// [start, end), oldest first. uuid.Nil as exerciseID selects every exercise.
func (db *DB) QuerySetLogs(ctx context.Context, userID uuid.UUID, start, end time.Time, exerciseID uuid.UUID) ([]models.SetLogRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT s.id, s.workout_log_id, w.user_id, s.exercise_id, e.name, s.set_num,
		       s.weight_kg, s.reps_performed, s.rpe_actual, w.started_at
		FROM set_logs s
		JOIN workout_logs w ON w.id = s.workout_log_id
		JOIN exercises e ON e.id = s.exercise_id
		WHERE w.user_id = $1 AND w.started_at >= $2 AND w.started_at < $3
		  AND ($4::uuid IS NULL OR s.exercise_id = $4::uuid)
		ORDER BY w.started_at ASC, s.set_num ASC
	`, userID, start, end, exerciseFilter(exerciseID))
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	return collectSetLogs(rows)
}

// LatestSession returns every set of an exercise from the user's most recent
// workout that contains it. ErrNotFound means the exercise was never logged.
func (db *DB) LatestSession(ctx context.Context, userID, exerciseID uuid.UUID) ([]models.SetLogRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT s.id, s.workout_log_id, w.user_id, s.exercise_id, e.name, s.set_num,
		       s.weight_kg, s.reps_performed, s.rpe_actual, w.started_at
		FROM set_logs s
		JOIN workout_logs w ON w.id = s.workout_log_id
		JOIN exercises e ON e.id = s.exercise_id
		WHERE s.exercise_id = $2 AND s.workout_log_id = (
			SELECT w2.id FROM workout_logs w2
			JOIN set_logs s2 ON s2.workout_log_id = w2.id
			WHERE w2.user_id = $1 AND s2.exercise_id = $2
			ORDER BY w2.started_at DESC
			LIMIT 1
		)
		ORDER BY s.set_num ASC
	`, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying latest session: %w", err)
	}
	sets, err := collectSetLogs(rows)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, ErrNotFound
	}
	return sets, nil
}

func collectSetLogs(rows pgx.Rows) ([]models.SetLogRow, error) {
	defer rows.Close()

	var result []models.SetLogRow
	for rows.Next() {
		var r models.SetLogRow
		if err := rows.Scan(&r.ID, &r.WorkoutLogID, &r.UserID, &r.ExerciseID, &r.ExerciseName,
			&r.SetNum, &r.WeightKg, &r.Reps, &r.RPE, &r.PerformedAt); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
