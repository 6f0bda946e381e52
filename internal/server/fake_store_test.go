package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/models"
	"github.com/claude/liftcoach/internal/progress"
	"github.com/claude/liftcoach/internal/storage"
)

var (
	devUser  = uuid.MustParse("5b0f6c2e-8d1a-4c3e-9f7a-1d2e3f4a5b6c")
	aliceID  = uuid.MustParse("9c1e7d3f-2a4b-4d5c-8e6f-7a8b9c0d1e2f")
	squatID  = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	benchID  = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	workoutA = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001")
	workoutB = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000002")
)

func rpe(v float64) *float64 { return &v }

// fakeStore serves a fixed log for devUser: squat and bench on Jan 5 2026,
// squat again on Jan 8.
type fakeStore struct {
	sets   []models.SetLogRow
	maxes  map[uuid.UUID]models.OneRepMaxRow
	logins map[string]uuid.UUID
	err    error
}

func newFakeStore() *fakeStore {
	jan5 := time.Date(2026, 1, 5, 17, 0, 0, 0, time.UTC)
	jan8 := time.Date(2026, 1, 8, 17, 0, 0, 0, time.UTC)
	return &fakeStore{
		sets: []models.SetLogRow{
			{WorkoutLogID: workoutA, UserID: devUser, ExerciseID: squatID, ExerciseName: "Back Squat", SetNum: 1, WeightKg: 100, Reps: 5, RPE: rpe(7.5), PerformedAt: jan5},
			{WorkoutLogID: workoutA, UserID: devUser, ExerciseID: benchID, ExerciseName: "Bench Press", SetNum: 2, WeightKg: 80, Reps: 8, PerformedAt: jan5},
			{WorkoutLogID: workoutB, UserID: devUser, ExerciseID: squatID, ExerciseName: "Back Squat", SetNum: 1, WeightKg: 102.5, Reps: 5, RPE: rpe(6), PerformedAt: jan8},
		},
		maxes: map[uuid.UUID]models.OneRepMaxRow{
			squatID: {UserID: devUser, ExerciseID: squatID, ExerciseName: "Back Squat", WeightKg: 130},
		},
		logins: map[string]uuid.UUID{"alice@example.com": aliceID},
	}
}

func (f *fakeStore) QuerySetLogs(_ context.Context, userID uuid.UUID, start, end time.Time, exerciseID uuid.UUID) ([]models.SetLogRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.SetLogRow
	for _, s := range f.sets {
		if s.UserID != userID || s.PerformedAt.Before(start) || !s.PerformedAt.Before(end) {
			continue
		}
		if exerciseID != uuid.Nil && s.ExerciseID != exerciseID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) LatestSession(ctx context.Context, userID, exerciseID uuid.UUID) ([]models.SetLogRow, error) {
	sets, err := f.QuerySetLogs(ctx, userID, time.Time{}, time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC), exerciseID)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, storage.ErrNotFound
	}
	return progress.LatestSession(sets), nil
}

func (f *fakeStore) GetOneRepMax(_ context.Context, userID, exerciseID uuid.UUID) (*models.OneRepMaxRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.maxes[exerciseID]
	if !ok || m.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return &m, nil
}

func (f *fakeStore) LatestPrescription(context.Context, uuid.UUID, uuid.UUID) (*models.PrescriptionRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) GetDataStats(_ context.Context, userID uuid.UUID) (*storage.DataStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	stats := &storage.DataStats{RecordedMaxes: int64(len(f.maxes))}
	for _, s := range f.sets {
		if s.UserID == userID {
			stats.TotalSets++
		}
	}
	return stats, nil
}

func (f *fakeStore) UserIDByLogin(_ context.Context, login string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	id, ok := f.logins[strings.ToLower(login)]
	if !ok {
		return uuid.Nil, storage.ErrNotFound
	}
	return id, nil
}

var errBackend = errors.New("backend unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(store Store) *Server {
	return New(store, Options{APIKey: "test-key", DevUserID: devUser, DefaultTargetRPE: 8}, discardLogger())
}
