package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/claude/liftcoach/internal/models"
)

// snapshotSchema mirrors the persistence service's tables. Timestamps are
// RFC 3339 UTC text and IDs are canonical UUID text.
const snapshotSchema = `
CREATE TABLE IF NOT EXISTS users (
	id    TEXT PRIMARY KEY,
	email TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS exercises (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS workout_templates (
	id         TEXT PRIMARY KEY,
	program_id TEXT,
	week_num   INTEGER NOT NULL,
	day_num    INTEGER NOT NULL,
	name       TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS template_exercises (
	template_id     TEXT NOT NULL,
	exercise_id     TEXT NOT NULL,
	order_index     INTEGER NOT NULL,
	sets_planned    INTEGER NOT NULL,
	reps_target     TEXT NOT NULL DEFAULT '',
	rpe_target      REAL,
	percent_1rm_min REAL,
	percent_1rm_max REAL,
	notes           TEXT
);
CREATE TABLE IF NOT EXISTS workout_logs (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	template_id TEXT,
	started_at  TEXT NOT NULL,
	ended_at    TEXT
);
CREATE TABLE IF NOT EXISTS set_logs (
	id             TEXT PRIMARY KEY,
	workout_log_id TEXT NOT NULL,
	exercise_id    TEXT NOT NULL,
	set_num        INTEGER NOT NULL,
	weight_kg      REAL NOT NULL,
	reps_performed INTEGER NOT NULL,
	rpe_actual     REAL,
	created_at     TEXT
);
CREATE TABLE IF NOT EXISTS user_1rms (
	user_id     TEXT NOT NULL,
	exercise_id TEXT NOT NULL,
	weight_kg   REAL NOT NULL,
	updated_at  TEXT NOT NULL,
	PRIMARY KEY (user_id, exercise_id)
);
`

// SnapshotDB serves the same reads as DB from a SQLite export of the
// persistence service, for offline use and local development.
type SnapshotDB struct {
	db *sql.DB
}

// OpenSnapshot opens (or creates) the SQLite snapshot at path. Missing
// tables are created empty.
func OpenSnapshot(ctx context.Context, path string) (*SnapshotDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot tables: %w", err)
	}
	return &SnapshotDB{db: db}, nil
}

// Close closes the snapshot database.
func (s *SnapshotDB) Close() error {
	return s.db.Close()
}

// QuerySetLogs returns a user's logged sets whose workout started within
// [start, end), oldest first. uuid.Nil as exerciseID selects every exercise.
func (s *SnapshotDB) QuerySetLogs(ctx context.Context, userID uuid.UUID, start, end time.Time, exerciseID uuid.UUID) ([]models.SetLogRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.workout_log_id, w.user_id, s.exercise_id, e.name, s.set_num,
		       s.weight_kg, s.reps_performed, s.rpe_actual, w.started_at
		FROM set_logs s
		JOIN workout_logs w ON w.id = s.workout_log_id
		JOIN exercises e ON e.id = s.exercise_id
		WHERE w.user_id = ?1 AND w.started_at >= ?2 AND w.started_at < ?3
		  AND (?4 IS NULL OR s.exercise_id = ?4)
		ORDER BY w.started_at ASC, s.set_num ASC
	`, userID.String(), formatTime(start), formatTime(end), snapshotFilter(exerciseID))
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	return scanSnapshotSets(rows)
}

// LatestSession returns every set of an exercise from the user's most recent
// workout that contains it.
func (s *SnapshotDB) LatestSession(ctx context.Context, userID, exerciseID uuid.UUID) ([]models.SetLogRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.workout_log_id, w.user_id, s.exercise_id, e.name, s.set_num,
		       s.weight_kg, s.reps_performed, s.rpe_actual, w.started_at
		FROM set_logs s
		JOIN workout_logs w ON w.id = s.workout_log_id
		JOIN exercises e ON e.id = s.exercise_id
		WHERE s.exercise_id = ?2 AND s.workout_log_id = (
			SELECT w2.id FROM workout_logs w2
			JOIN set_logs s2 ON s2.workout_log_id = w2.id
			WHERE w2.user_id = ?1 AND s2.exercise_id = ?2
			ORDER BY w2.started_at DESC
			LIMIT 1
		)
		ORDER BY s.set_num ASC
	`, userID.String(), exerciseID.String())
	if err != nil {
		return nil, fmt.Errorf("querying latest session: %w", err)
	}
	sets, err := scanSnapshotSets(rows)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, ErrNotFound
	}
	return sets, nil
}

// GetOneRepMax returns the user's recorded one-rep max for an exercise.
func (s *SnapshotDB) GetOneRepMax(ctx context.Context, userID, exerciseID uuid.UUID) (*models.OneRepMaxRow, error) {
	var r models.OneRepMaxRow
	var updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT m.user_id, m.exercise_id, e.name, m.weight_kg, m.updated_at
		FROM user_1rms m
		JOIN exercises e ON e.id = m.exercise_id
		WHERE m.user_id = ?1 AND m.exercise_id = ?2
	`, userID.String(), exerciseID.String()).Scan(&r.UserID, &r.ExerciseID, &r.ExerciseName, &r.WeightKg, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying one-rep max: %w", err)
	}
	if r.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &r, nil
}

// LatestPrescription returns the prescription for an exercise from the
// template of the user's most recent templated workout that logged it.
func (s *SnapshotDB) LatestPrescription(ctx context.Context, userID, exerciseID uuid.UUID) (*models.PrescriptionRow, error) {
	var r models.PrescriptionRow
	var notes sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT te.template_id, te.exercise_id, t.week_num, t.day_num, te.sets_planned,
		       te.reps_target, te.rpe_target, te.percent_1rm_min, te.percent_1rm_max, te.notes
		FROM template_exercises te
		JOIN workout_templates t ON t.id = te.template_id
		WHERE te.exercise_id = ?2 AND te.template_id = (
			SELECT w.template_id FROM workout_logs w
			JOIN set_logs s ON s.workout_log_id = w.id
			WHERE w.user_id = ?1 AND s.exercise_id = ?2 AND w.template_id IS NOT NULL
			ORDER BY w.started_at DESC
			LIMIT 1
		)
		ORDER BY te.order_index ASC
		LIMIT 1
	`, userID.String(), exerciseID.String()).Scan(&r.TemplateID, &r.ExerciseID, &r.WeekNum, &r.DayNum,
		&r.SetsPlanned, &r.RepsTarget, &r.RPETarget, &r.PercentMin, &r.PercentMax, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying prescription: %w", err)
	}
	r.Notes = notes.String
	return &r, nil
}

// UserIDByLogin resolves a login name against the snapshot's users table.
func (s *SnapshotDB) UserIDByLogin(ctx context.Context, login string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE lower(email) = lower(?)`, login,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("looking up user: %w", err)
	}
	return id, nil
}

// GetDataStats returns aggregate statistics for a user's logged training.
func (s *SnapshotDB) GetDataStats(ctx context.Context, userID uuid.UUID) (*DataStats, error) {
	stats := &DataStats{}
	var earliest, latest sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT w.id), COUNT(s.id), COUNT(s.rpe_actual),
		       MIN(w.started_at), MAX(w.started_at)
		FROM workout_logs w
		LEFT JOIN set_logs s ON s.workout_log_id = w.id
		WHERE w.user_id = ?
	`, userID.String()).Scan(&stats.TotalWorkouts, &stats.TotalSets, &stats.RatedSets, &earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}
	if stats.EarliestWorkout, err = parseNullTime(earliest); err != nil {
		return nil, err
	}
	if stats.LatestWorkout, err = parseNullTime(latest); err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_1rms WHERE user_id = ?`, userID.String(),
	).Scan(&stats.RecordedMaxes)
	if err != nil {
		return nil, fmt.Errorf("counting maxes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.name, COUNT(s.id), COUNT(DISTINCT w.id)
		FROM set_logs s
		JOIN workout_logs w ON w.id = s.workout_log_id
		JOIN exercises e ON e.id = s.exercise_id
		WHERE w.user_id = ?
		GROUP BY e.id, e.name
		ORDER BY COUNT(s.id) DESC, e.name ASC
	`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var es ExerciseStat
		if err := rows.Scan(&es.ExerciseID, &es.Name, &es.Sets, &es.Workouts); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.Exercises = append(stats.Exercises, es)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func scanSnapshotSets(rows *sql.Rows) ([]models.SetLogRow, error) {
	defer rows.Close()

	var result []models.SetLogRow
	for rows.Next() {
		var r models.SetLogRow
		var started string
		if err := rows.Scan(&r.ID, &r.WorkoutLogID, &r.UserID, &r.ExerciseID, &r.ExerciseName,
			&r.SetNum, &r.WeightKg, &r.Reps, &r.RPE, &started); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		t, err := parseTime(started)
		if err != nil {
			return nil, err
		}
		r.PerformedAt = t
		result = append(result, r)
	}
	return result, rows.Err()
}

func snapshotFilter(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing snapshot time %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
