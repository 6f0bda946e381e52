package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/liftcoach/internal/models"
)

// GetOneRepMax returns the user's recorded one-rep max for an exercise.
func (db *DB) GetOneRepMax(ctx context.Context, userID, exerciseID uuid.UUID) (*models.OneRepMaxRow, error) {
	var r models.OneRepMaxRow
	err := db.Pool.QueryRow(ctx, `
		SELECT m.user_id, m.exercise_id, e.name, m.weight_kg, m.updated_at
		FROM user_1rms m
		JOIN exercises e ON e.id = m.exercise_id
		WHERE m.user_id = $1 AND m.exercise_id = $2
	`, userID, exerciseID).Scan(&r.UserID, &r.ExerciseID, &r.ExerciseName, &r.WeightKg, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying one-rep max: %w", err)
	}
	return &r, nil
}
