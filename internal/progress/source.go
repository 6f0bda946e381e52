package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/models"
	"github.com/claude/liftcoach/internal/storage"
)

// Source reads the training log progress is computed from. Lookups that
// match nothing return storage.ErrNotFound.
type Source interface {
	QuerySetLogs(ctx context.Context, userID uuid.UUID, start, end time.Time, exerciseID uuid.UUID) ([]models.SetLogRow, error)
	LatestSession(ctx context.Context, userID, exerciseID uuid.UUID) ([]models.SetLogRow, error)
	GetOneRepMax(ctx context.Context, userID, exerciseID uuid.UUID) (*models.OneRepMaxRow, error)
	LatestPrescription(ctx context.Context, userID, exerciseID uuid.UUID) (*models.PrescriptionRow, error)
}

var (
	_ Source = (*storage.DB)(nil)
	_ Source = (*storage.SnapshotDB)(nil)
)

// Strength loads one exercise's sets in [start, end) and its recorded max
// and returns the strength series. A missing max leaves Historical nil.
func Strength(ctx context.Context, src Source, userID, exerciseID uuid.UUID, start, end time.Time) ([]StrengthPoint, error) {
	sets, err := src.QuerySetLogs(ctx, userID, start, end, exerciseID)
	if err != nil {
		return nil, err
	}
	oneRM, err := src.GetOneRepMax(ctx, userID, exerciseID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("loading one-rep max: %w", err)
	}
	return StrengthSeries(sets, oneRM), nil
}

// Volume loads sets in [start, end) and sums them per day, or per week when
// weekly is set. uuid.Nil as exerciseID covers every exercise.
func Volume(ctx context.Context, src Source, userID, exerciseID uuid.UUID, start, end time.Time, weekly bool) ([]VolumePoint, error) {
	sets, err := src.QuerySetLogs(ctx, userID, start, end, exerciseID)
	if err != nil {
		return nil, err
	}
	if weekly {
		return VolumeByWeek(sets), nil
	}
	return VolumeByDay(sets), nil
}

// Summaries loads sets in [start, end) and summarizes them per exercise.
func Summaries(ctx context.Context, src Source, userID uuid.UUID, start, end time.Time) ([]ExerciseSummary, error) {
	sets, err := src.QuerySetLogs(ctx, userID, start, end, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return SummarizeExercises(sets), nil
}

// NextSession advises the next session of an exercise from its latest
// logged session. The target RPE comes from the program prescription when
// one exists, else defaultTargetRPE. storage.ErrNotFound means the exercise
// was never logged.
func NextSession(ctx context.Context, src Source, userID, exerciseID uuid.UUID, defaultTargetRPE float64) (Advice, error) {
	session, err := src.LatestSession(ctx, userID, exerciseID)
	if err != nil {
		return Advice{}, err
	}

	p := Prescription{TargetRPE: defaultTargetRPE}

	rx, err := src.LatestPrescription(ctx, userID, exerciseID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return Advice{}, fmt.Errorf("loading prescription: %w", err)
	default:
		if rx.RPETarget != nil {
			p.TargetRPE = *rx.RPETarget
		}
		if rx.PercentMin != nil {
			p.PercentMin = *rx.PercentMin
		}
		if rx.PercentMax != nil {
			p.PercentMax = *rx.PercentMax
		}
	}

	if p.PercentMin > 0 {
		oneRM, err := src.GetOneRepMax(ctx, userID, exerciseID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return Advice{}, fmt.Errorf("loading one-rep max: %w", err)
		default:
			p.OneRepMax = oneRM.WeightKg
		}
	}

	a, ok := Advise(session, p)
	if !ok {
		return Advice{}, storage.ErrNotFound
	}
	return a, nil
}
