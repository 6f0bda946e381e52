package models

import (
	"time"

	"github.com/google/uuid"
)

// SetLogRow is one completed set as recorded by the persistence service
// (set_logs joined with its workout_logs and exercises rows).
type SetLogRow struct {
	ID           uuid.UUID `json:"id"`
	WorkoutLogID uuid.UUID `json:"workout_log_id"`
	UserID       uuid.UUID `json:"user_id"`
	ExerciseID   uuid.UUID `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	SetNum       int       `json:"set_num"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	RPE          *float64  `json:"rpe,omitempty"`
	PerformedAt  time.Time `json:"performed_at"`
}

// OneRepMaxRow is a lifter's recorded max for one exercise (user_1rms).
type OneRepMaxRow struct {
	UserID       uuid.UUID `json:"user_id"`
	ExerciseID   uuid.UUID `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	WeightKg     float64   `json:"weight_kg"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PrescriptionRow is what a program template asks for on one exercise
// (template_exercises joined with workout_templates).
type PrescriptionRow struct {
	TemplateID  uuid.UUID `json:"template_id"`
	ExerciseID  uuid.UUID `json:"exercise_id"`
	WeekNum     int       `json:"week_num"`
	DayNum      int       `json:"day_num"`
	SetsPlanned int       `json:"sets_planned"`
	RepsTarget  string    `json:"reps_target"`
	RPETarget   *float64  `json:"rpe_target,omitempty"`
	PercentMin  *float64  `json:"percent_1rm_min,omitempty"`
	PercentMax  *float64  `json:"percent_1rm_max,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}
