package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftcoach/internal/models"
	"github.com/claude/liftcoach/internal/progress"
	"github.com/claude/liftcoach/internal/storage"
)

var (
	testUser = uuid.MustParse("5b0f6c2e-8d1a-4c3e-9f7a-1d2e3f4a5b6c")
	squatID  = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	benchID  = uuid.MustParse("22222222-2222-4222-8222-222222222222")
)

func rpe(v float64) *float64 { return &v }

// fakeSource serves a squat session on Jan 5 and Jan 8 2026 for testUser.
type fakeSource struct {
	sets []models.SetLogRow
}

func newFakeSource() *fakeSource {
	jan5 := time.Date(2026, 1, 5, 17, 0, 0, 0, time.UTC)
	jan8 := time.Date(2026, 1, 8, 17, 0, 0, 0, time.UTC)
	wA := uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001")
	wB := uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000002")
	return &fakeSource{sets: []models.SetLogRow{
		{WorkoutLogID: wA, UserID: testUser, ExerciseID: squatID, ExerciseName: "Back Squat", SetNum: 1, WeightKg: 95, Reps: 5, RPE: rpe(8), PerformedAt: jan5},
		{WorkoutLogID: wB, UserID: testUser, ExerciseID: squatID, ExerciseName: "Back Squat", SetNum: 1, WeightKg: 100, Reps: 5, RPE: rpe(6), PerformedAt: jan8},
	}}
}

func (f *fakeSource) QuerySetLogs(_ context.Context, userID uuid.UUID, start, end time.Time, exerciseID uuid.UUID) ([]models.SetLogRow, error) {
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

func (f *fakeSource) LatestSession(ctx context.Context, userID, exerciseID uuid.UUID) ([]models.SetLogRow, error) {
	sets, _ := f.QuerySetLogs(ctx, userID, time.Time{}, time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC), exerciseID)
	if len(sets) == 0 {
		return nil, storage.ErrNotFound
	}
	return progress.LatestSession(sets), nil
}

func (f *fakeSource) GetOneRepMax(context.Context, uuid.UUID, uuid.UUID) (*models.OneRepMaxRow, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeSource) LatestPrescription(context.Context, uuid.UUID, uuid.UUID) (*models.PrescriptionRow, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeSource) GetDataStats(_ context.Context, userID uuid.UUID) (*storage.DataStats, error) {
	stats := &storage.DataStats{}
	for _, s := range f.sets {
		if s.UserID == userID {
			stats.TotalSets++
		}
	}
	return stats, nil
}

func newTestHandlers() *handlers {
	return &handlers{
		ds:        newFakeSource(),
		targetRPE: 8,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

type toolFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// call invokes a tool handler as testUser and returns the result text.
func call(t *testing.T, fn toolFunc, args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	res, err := fn(WithUserID(context.Background(), testUser), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text, res.IsError
}

func decode(t *testing.T, text string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
}

// TestUserIDFromContextDefault verifies uuid.Nil when no value is set in
// the context.
func TestUserIDFromContextDefault(t *testing.T) {
	if id := UserIDFromContext(context.Background()); id != uuid.Nil {
		t.Errorf("UserIDFromContext(empty) = %s, want nil UUID", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), testUser)
	if id := UserIDFromContext(ctx); id != testUser {
		t.Errorf("UserIDFromContext = %s, want %s", id, testUser)
	}
}

// TestDefaultTimeRange verifies time range defaults (last 30 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := end.Sub(start); diff != defaultWindow {
		t.Errorf("default range = %v, want %v", diff, defaultWindow)
	}

	// Date-only end covers the whole day
	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if !end.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want 2024-02-01T00:00", end)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2024-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	if _, _, err = defaultTimeRange("not-a-date", ""); err == nil {
		t.Error("expected error for invalid date")
	}
	if _, _, err = defaultTimeRange("2024-02-01", "2024-01-01"); err == nil {
		t.Error("expected error for start after end")
	}
}

func TestCalculatorTools(t *testing.T) {
	h := newTestHandlers()

	tests := []struct {
		name string
		fn   toolFunc
		args map[string]any
		want map[string]float64
	}{
		{"e1rm", h.estimateE1RM, map[string]any{"weight": 100.0, "reps": 5.0}, map[string]float64{"e1rm": 116.7}},
		{"e1rm single", h.estimateE1RM, map[string]any{"weight": 140.0, "reps": 1.0}, map[string]float64{"e1rm": 140}},
		{"next weight default target", h.suggestNextWeight, map[string]any{"last_weight": 100.0, "last_rpe": 6.0},
			map[string]float64{"suggested_weight": 105, "rpe_difference": -2, "target_rpe": 8}},
		{"next weight explicit target", h.suggestNextWeight, map[string]any{"last_weight": 100.0, "last_rpe": 9.0, "target_rpe": 7.0},
			map[string]float64{"suggested_weight": 95, "rpe_difference": 2, "target_rpe": 7}},
		{"daily", h.dailyPerformance, map[string]any{"weight": 100.0, "reps": 5.0, "rpe": 8.0},
			map[string]float64{"e1rm": 116.7, "daily_e1rm": 119}},
		{"range", h.weightRange, map[string]any{"one_rep_max": 150.0, "percent_min": 75.0, "percent_max": 80.0},
			map[string]float64{"min": 112.5, "max": 120}},
		{"single percent", h.weightRange, map[string]any{"one_rep_max": 150.0, "percent_min": 75.0},
			map[string]float64{"min": 112.5, "max": 112.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, tt.fn, tt.args)
			if isErr {
				t.Fatalf("tool error: %s", text)
			}
			var got map[string]float64
			decode(t, text, &got)
			for k, want := range tt.want {
				if got[k] != want {
					t.Errorf("%s = %v, want %v", k, got[k], want)
				}
			}
		})
	}
}

func TestCalculatorToolsRejectBadInput(t *testing.T) {
	h := newTestHandlers()

	tests := []struct {
		name string
		fn   toolFunc
		args map[string]any
	}{
		{"missing reps", h.estimateE1RM, map[string]any{"weight": 100.0}},
		{"zero reps", h.estimateE1RM, map[string]any{"weight": 100.0, "reps": 0.0}},
		{"negative weight", h.dailyPerformance, map[string]any{"weight": -5.0, "reps": 5.0, "rpe": 8.0}},
		{"rpe above 10", h.rpeFeedback, map[string]any{"rpe": 11.0}},
		{"target below 0", h.suggestNextWeight, map[string]any{"last_weight": 100.0, "last_rpe": 8.0, "target_rpe": -1.0}},
		{"set with zero reps", h.volumeLoad, map[string]any{"sets": []any{map[string]any{"weight": 100.0, "reps": 0}}}},
		{"fractional reps", h.estimateE1RM, map[string]any{"weight": 100.0, "reps": 5.9}},
		{"fractional reps daily", h.dailyPerformance, map[string]any{"weight": 100.0, "reps": 2.5, "rpe": 8.0}},
		{"reps as text", h.estimateE1RM, map[string]any{"weight": 100.0, "reps": "5"}},
		{"target as text", h.suggestNextWeight, map[string]any{"last_weight": 100.0, "last_rpe": 6.0, "target_rpe": "eight"}},
		{"percent_max as text", h.weightRange, map[string]any{"one_rep_max": 150.0, "percent_min": 75.0, "percent_max": "80"}},
		{"fractional set reps", h.volumeLoad, map[string]any{"sets": []any{map[string]any{"weight": 100.0, "reps": 5.5}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if text, isErr := call(t, tt.fn, tt.args); !isErr {
				t.Errorf("expected tool error, got %s", text)
			}
		})
	}
}

func TestRPEFeedbackTool(t *testing.T) {
	text, isErr := call(t, newTestHandlers().rpeFeedback, map[string]any{"rpe": 8.0})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var got struct {
		RPE      float64 `json:"rpe"`
		Feedback string  `json:"feedback"`
	}
	decode(t, text, &got)
	if got.Feedback != "Hard - good training stimulus" {
		t.Errorf("feedback = %q", got.Feedback)
	}
}

func TestVolumeLoadTool(t *testing.T) {
	text, isErr := call(t, newTestHandlers().volumeLoad, map[string]any{
		"sets": []any{
			map[string]any{"weight": 100.0, "reps": 5},
			map[string]any{"weight": 80.0, "reps": 8},
		},
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var got struct {
		PerSet []float64 `json:"per_set"`
		Total  float64   `json:"total"`
	}
	decode(t, text, &got)
	if len(got.PerSet) != 2 || got.PerSet[0] != 500 || got.PerSet[1] != 640 {
		t.Errorf("per_set = %v, want [500 640]", got.PerSet)
	}
	if got.Total != 1140 {
		t.Errorf("total = %v, want 1140", got.Total)
	}
}

func TestStrengthProgressTool(t *testing.T) {
	h := newTestHandlers()
	text, isErr := call(t, h.strengthProgress, map[string]any{
		"exercise_id": squatID.String(),
		"start":       "2026-01-01",
		"end":         "2026-01-31",
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var points []progress.StrengthPoint
	decode(t, text, &points)
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Date != "2026-01-05" || points[1].Date != "2026-01-08" {
		t.Errorf("dates = %s, %s", points[0].Date, points[1].Date)
	}
	if points[0].Historical != nil {
		t.Errorf("historical = %v, want nil without a recorded max", *points[0].Historical)
	}

	if text, isErr := call(t, h.strengthProgress, map[string]any{"exercise_id": "squat"}); !isErr {
		t.Errorf("expected error for invalid exercise_id, got %s", text)
	}
}

func TestVolumeProgressTool(t *testing.T) {
	h := newTestHandlers()

	text, isErr := call(t, h.volumeProgress, map[string]any{
		"start": "2026-01-01",
		"end":   "2026-01-31",
		"agg":   "weekly",
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var points []progress.VolumePoint
	decode(t, text, &points)
	// Jan 5 and Jan 8 2026 share the week starting Sunday Jan 4.
	if len(points) != 1 || points[0].Date != "2026-01-04" || points[0].Total != 975 {
		t.Errorf("points = %+v, want one week of 975 on 2026-01-04", points)
	}

	if text, isErr := call(t, h.volumeProgress, map[string]any{"agg": "monthly"}); !isErr {
		t.Errorf("expected error for agg=monthly, got %s", text)
	}
}

func TestExerciseSummaryToolEmpty(t *testing.T) {
	text, isErr := call(t, newTestHandlers().exerciseSummary, map[string]any{
		"start": "2025-01-01",
		"end":   "2025-01-31",
	})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	if text != "[]" {
		t.Errorf("result = %s, want []", text)
	}
}

func TestNextSessionAdviceTool(t *testing.T) {
	h := newTestHandlers()

	text, isErr := call(t, h.nextSessionAdvice, map[string]any{"exercise_id": squatID.String()})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var a progress.Advice
	decode(t, text, &a)
	if a.LastSessionDate != "2026-01-08" {
		t.Errorf("last session = %s, want 2026-01-08", a.LastSessionDate)
	}
	if a.SuggestedWeight != 105 {
		t.Errorf("suggested = %v, want 105", a.SuggestedWeight)
	}
	if a.TargetRPE != 8 {
		t.Errorf("target = %v, want configured 8", a.TargetRPE)
	}
	if a.DailyE1RM != 121.4 {
		t.Errorf("daily e1rm = %v, want 121.4", a.DailyE1RM)
	}

	if text, isErr := call(t, h.nextSessionAdvice, map[string]any{"exercise_id": benchID.String()}); !isErr {
		t.Errorf("expected error for never-logged exercise, got %s", text)
	}
}

func TestRPEScaleResource(t *testing.T) {
	var req mcp.ReadResourceRequest
	req.Params.URI = "liftcoach://rpe_scale"

	contents, err := newTestHandlers().rpeScale(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextResourceContents", contents[0])
	}
	if text.URI != req.Params.URI || text.MIMEType != "application/json" {
		t.Errorf("uri=%s mime=%s", text.URI, text.MIMEType)
	}
	var bands []map[string]any
	decode(t, text.Text, &bands)
	if len(bands) == 0 {
		t.Error("empty RPE scale")
	}
}

func TestTrainingStatsResource(t *testing.T) {
	var req mcp.ReadResourceRequest
	req.Params.URI = "liftcoach://training_stats"

	contents, err := newTestHandlers().trainingStats(WithUserID(context.Background(), testUser), req)
	if err != nil {
		t.Fatal(err)
	}
	var stats storage.DataStats
	decode(t, contents[0].(mcp.TextResourceContents).Text, &stats)
	if stats.TotalSets != 2 {
		t.Errorf("total sets = %d, want 2", stats.TotalSets)
	}
}

func TestNewRegistersTools(t *testing.T) {
	s := New(newFakeSource(), 8, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if s == nil {
		t.Fatal("New returned nil")
	}
	if h := NewHTTPHandler(s, func(*http.Request) uuid.UUID { return testUser }); h == nil {
		t.Fatal("NewHTTPHandler returned nil")
	}
}
