// Package progress builds chart series and per-exercise summaries from logged
// sets by applying the coach estimators row by row.
package progress

import (
	"sort"
	"time"

	"github.com/claude/liftcoach/internal/coach"
	"github.com/claude/liftcoach/internal/models"
)

const dateLayout = "2006-01-02"

// StrengthPoint compares the recorded max with the best RPE-adjusted estimate
// of one training day.
type StrengthPoint struct {
	Date       string   `json:"date"`
	Historical *float64 `json:"historical"`
	Daily      *float64 `json:"daily"`
}

// VolumePoint is the summed volume load of a day or week.
type VolumePoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// StrengthSeries returns one point per training day for the given sets,
// oldest first. Sets without an RPE are treated as RPE 10. oneRM may be nil.
func StrengthSeries(sets []models.SetLogRow, oneRM *models.OneRepMaxRow) []StrengthPoint {
	best := make(map[string]float64)
	for _, s := range sets {
		daily := coach.DailyPerformance(s.WeightKg, s.Reps, rpeOrMax(s.RPE))
		key := dayKey(s.PerformedAt)
		if cur, ok := best[key]; !ok || daily > cur {
			best[key] = daily
		}
	}

	var historical *float64
	if oneRM != nil {
		w := oneRM.WeightKg
		historical = &w
	}

	points := make([]StrengthPoint, 0, len(best))
	for _, day := range sortedKeys(best) {
		daily := best[day]
		points = append(points, StrengthPoint{Date: day, Historical: historical, Daily: &daily})
	}
	return points
}

// VolumeByDay sums VolumeLoad per calendar day (UTC), oldest first.
func VolumeByDay(sets []models.SetLogRow) []VolumePoint {
	return volumeBy(sets, func(t time.Time) time.Time { return t })
}

// VolumeByWeek sums VolumeLoad per week. Weeks start on Sunday and are
// labelled with that Sunday's date.
func VolumeByWeek(sets []models.SetLogRow) []VolumePoint {
	return volumeBy(sets, func(day time.Time) time.Time {
		return day.AddDate(0, 0, -int(day.Weekday()))
	})
}

func volumeBy(sets []models.SetLogRow, bucket func(day time.Time) time.Time) []VolumePoint {
	totals := make(map[string]float64)
	for _, s := range sets {
		key := bucket(truncateDay(s.PerformedAt)).Format(dateLayout)
		totals[key] += coach.VolumeLoad(s.WeightKg, s.Reps)
	}

	points := make([]VolumePoint, 0, len(totals))
	for _, key := range sortedKeys(totals) {
		points = append(points, VolumePoint{Date: key, Total: totals[key]})
	}
	return points
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// sortedKeys works because dateLayout sorts lexically in date order.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func rpeOrMax(rpe *float64) float64 {
	if rpe == nil {
		return 10
	}
	return *rpe
}
