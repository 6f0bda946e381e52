package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DataStats holds aggregate statistics about a user's training log.
type DataStats struct {
	TotalWorkouts   int64          `json:"total_workouts"`
	TotalSets       int64          `json:"total_sets"`
	RatedSets       int64          `json:"rated_sets"`
	RecordedMaxes   int64          `json:"recorded_maxes"`
	EarliestWorkout *time.Time     `json:"earliest_workout"`
	LatestWorkout   *time.Time     `json:"latest_workout"`
	Exercises       []ExerciseStat `json:"exercises"`
}

// ExerciseStat holds set counts for a single exercise.
type ExerciseStat struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
	Name       string    `json:"name"`
	Sets       int64     `json:"sets"`
	Workouts   int64     `json:"workouts"`
}

// GetDataStats returns aggregate statistics for a user's logged training.
func (db *DB) GetDataStats(ctx context.Context, userID uuid.UUID) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT w.id), COUNT(s.id), COUNT(s.rpe_actual),
		       MIN(w.started_at), MAX(w.started_at)
		FROM workout_logs w
		LEFT JOIN set_logs s ON s.workout_log_id = w.id
		WHERE w.user_id = $1
	`, userID).Scan(&stats.TotalWorkouts, &stats.TotalSets, &stats.RatedSets,
		&stats.EarliestWorkout, &stats.LatestWorkout)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_1rms WHERE user_id = $1`, userID,
	).Scan(&stats.RecordedMaxes)
	if err != nil {
		return nil, fmt.Errorf("counting maxes: %w", err)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT e.id, e.name, COUNT(s.id), COUNT(DISTINCT w.id)
		FROM set_logs s
		JOIN workout_logs w ON w.id = s.workout_log_id
		JOIN exercises e ON e.id = s.exercise_id
		WHERE w.user_id = $1
		GROUP BY e.id, e.name
		ORDER BY COUNT(s.id) DESC, e.name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.ExerciseID, &s.Name, &s.Sets, &s.Workouts); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.Exercises = append(stats.Exercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
