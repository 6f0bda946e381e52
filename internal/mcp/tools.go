package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftcoach/internal/coach"
	"github.com/claude/liftcoach/internal/progress"
	"github.com/claude/liftcoach/internal/storage"
)

// defaultWindow is the look-back used when a tool call names no start.
const defaultWindow = 30 * 24 * time.Hour

// defaultTimeRange returns start/end defaulting to the last 30 days. A
// date-only end covers that whole day.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		var dateOnly bool
		end, dateOnly, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if dateOnly {
			end = end.AddDate(0, 0, 1)
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, _, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.Add(-defaultWindow)
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start must be before end")
	}
	return start, end, nil
}

func parseFlexTime(s string) (time.Time, bool, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, false, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Tool definitions ---

var toolEstimateE1RM = mcp.NewTool("estimate_e1rm",
	mcp.WithDescription("Estimate a one-rep max from a set with the Epley formula, rounded to 0.1 kg. A single rep returns the weight itself."),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight lifted in kg")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Repetitions completed (positive integer)")),
)

var toolSuggestNextWeight = mcp.NewTool("suggest_next_weight",
	mcp.WithDescription("Suggest next session's weight from last session's weight and RPE. Two or more RPE under target adds 5%, one or more over target removes 5%, otherwise the weight holds. Rounded to 0.1 kg."),
	mcp.WithNumber("last_weight", mcp.Required(), mcp.Description("Weight used last session in kg")),
	mcp.WithNumber("last_rpe", mcp.Required(), mcp.Description("RPE reported last session (0-10)")),
	mcp.WithNumber("target_rpe", mcp.Description("Target RPE (0-10). Defaults to the server's configured target.")),
)

var toolDailyPerformance = mcp.NewTool("daily_performance",
	mcp.WithDescription("RPE-adjusted one-rep max estimate for today: the e1RM scaled up by 1% per RPE point below 10."),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight lifted in kg")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Repetitions completed (positive integer)")),
	mcp.WithNumber("rpe", mcp.Required(), mcp.Description("RPE of the set (0-10)")),
)

var toolRPEFeedback = mcp.NewTool("rpe_feedback",
	mcp.WithDescription("Classify an RPE into coaching feedback (e.g. 'Hard - good training stimulus')."),
	mcp.WithNumber("rpe", mcp.Required(), mcp.Description("RPE (0-10)")),
)

var toolVolumeLoad = mcp.NewTool("volume_load",
	mcp.WithDescription("Volume load (weight x reps) per set and in total."),
	mcp.WithArray("sets", mcp.Required(),
		mcp.Description("Sets as objects with weight (kg) and reps"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"weight": map[string]any{"type": "number"},
				"reps":   map[string]any{"type": "integer"},
			},
			"required": []string{"weight", "reps"},
		}),
	),
)

var toolWeightRange = mcp.NewTool("weight_range",
	mcp.WithDescription("Working weight range for a percent-of-1RM prescription, rounded to 0.1 kg."),
	mcp.WithNumber("one_rep_max", mcp.Required(), mcp.Description("Recorded one-rep max in kg")),
	mcp.WithNumber("percent_min", mcp.Required(), mcp.Description("Lower bound in percent of 1RM (e.g. 75)")),
	mcp.WithNumber("percent_max", mcp.Description("Upper bound in percent of 1RM. Omit for a single weight.")),
)

var toolStrengthProgress = mcp.NewTool("strength_progress",
	mcp.WithDescription("Per-day strength series for one exercise: the best RPE-adjusted e1RM of each training day next to the recorded one-rep max."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise UUID")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolVolumeProgress = mcp.NewTool("volume_progress",
	mcp.WithDescription("Summed volume load per day or per week (weeks start on Sunday), optionally for one exercise."),
	mcp.WithString("exercise_id", mcp.Description("Exercise UUID. Omit for all exercises.")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("agg", mcp.Description("Aggregation. Defaults to 'daily'."), mcp.Enum("daily", "weekly")),
)

var toolExerciseSummary = mcp.NewTool("exercise_summary",
	mcp.WithDescription("Per-exercise totals over a period: set count, best set, best e1RM and volume load."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolNextSessionAdvice = mcp.NewTool("next_session_advice",
	mcp.WithDescription("Advice for the next session of an exercise from its most recent session: top set, RPE feedback, suggested weight and any prescribed percent range."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise UUID")),
)

// --- Calculator handlers ---

// numberArg reads a JSON number argument. present is false when the key is
// missing or null; any other non-number is an error rather than a default.
func numberArg(req mcp.CallToolRequest, key string) (v float64, present bool, err error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch n := raw.(type) {
	case float64:
		return n, true, nil
	case int:
		return float64(n), true, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a number, got %q", key, n)
		}
		return f, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number, got %v", key, raw)
	}
}

func requireNumber(req mcp.CallToolRequest, key string) (float64, error) {
	v, present, err := numberArg(req, key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, fmt.Errorf("%s parameter is required", key)
	}
	return v, nil
}

func optionalNumber(req mcp.CallToolRequest, key string, def float64) (float64, error) {
	v, present, err := numberArg(req, key)
	if err != nil || !present {
		return def, err
	}
	return v, nil
}

// requireReps reads a rep count. Fractional values are rejected, not
// truncated.
func requireReps(req mcp.CallToolRequest, key string) (int, error) {
	v, err := requireNumber(req, key)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
	}
	return int(v), nil
}

func (h *handlers) estimateE1RM(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := requireNumber(req, "weight")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reps, err := requireReps(req, "reps")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := errors.Join(coach.CheckWeight("weight", weight), coach.CheckReps("reps", reps)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(map[string]float64{"e1rm": coach.E1RM(weight, reps)})
}

func (h *handlers) suggestNextWeight(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lastWeight, err := requireNumber(req, "last_weight")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lastRPE, err := requireNumber(req, "last_rpe")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := optionalNumber(req, "target_rpe", h.targetRPE)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := errors.Join(
		coach.CheckWeight("last_weight", lastWeight),
		coach.CheckRPE("last_rpe", lastRPE),
		coach.CheckRPE("target_rpe", target),
	); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(map[string]float64{
		"suggested_weight": coach.SuggestNextWeight(lastWeight, lastRPE, target),
		"rpe_difference":   lastRPE - target,
		"target_rpe":       target,
	})
}

func (h *handlers) dailyPerformance(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := requireNumber(req, "weight")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reps, err := requireReps(req, "reps")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rpe, err := requireNumber(req, "rpe")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := errors.Join(coach.CheckWeight("weight", weight), coach.CheckReps("reps", reps), coach.CheckRPE("rpe", rpe)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(map[string]float64{
		"e1rm":       coach.E1RM(weight, reps),
		"daily_e1rm": coach.DailyPerformance(weight, reps, rpe),
	})
}

func (h *handlers) rpeFeedback(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rpe, err := requireNumber(req, "rpe")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := coach.CheckRPE("rpe", rpe); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(map[string]any{"rpe": rpe, "feedback": coach.RPEFeedback(rpe)})
}

func (h *handlers) volumeLoad(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Sets []struct {
			Weight float64 `json:"weight"`
			Reps   int     `json:"reps"`
		} `json:"sets"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid sets: " + err.Error()), nil
	}

	perSet := make([]float64, 0, len(args.Sets))
	var total float64
	for i, set := range args.Sets {
		if err := errors.Join(coach.CheckWeight("weight", set.Weight), coach.CheckReps("reps", set.Reps)); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("set %d: %v", i+1, err)), nil
		}
		v := coach.VolumeLoad(set.Weight, set.Reps)
		perSet = append(perSet, v)
		total += v
	}
	return toolJSON(map[string]any{"per_set": perSet, "total": total})
}

func (h *handlers) weightRange(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oneRM, err := requireNumber(req, "one_rep_max")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pctMin, err := requireNumber(req, "percent_min")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pctMax, err := optionalNumber(req, "percent_max", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := errors.Join(
		coach.CheckWeight("one_rep_max", oneRM),
		coach.CheckWeight("percent_min", pctMin),
		coach.CheckWeight("percent_max", pctMax),
	); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(coach.WeightRange(oneRM, pctMin, pctMax))
}

// --- Training log handlers ---

func (h *handlers) strengthProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	exerciseID, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid exercise_id: " + err.Error()), nil
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	points, err := progress.Strength(ctx, h.ds, UserIDFromContext(ctx), exerciseID, start, end)
	if err != nil {
		h.log.Error("mcp strength_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(points)
}

func (h *handlers) volumeProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID := uuid.Nil
	if raw := req.GetString("exercise_id", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError("invalid exercise_id: " + err.Error()), nil
		}
		exerciseID = id
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	var weekly bool
	switch agg := req.GetString("agg", "daily"); agg {
	case "daily":
	case "weekly":
		weekly = true
	default:
		return mcp.NewToolResultError("agg must be daily or weekly, got " + agg), nil
	}

	points, err := progress.Volume(ctx, h.ds, UserIDFromContext(ctx), exerciseID, start, end, weekly)
	if err != nil {
		h.log.Error("mcp volume_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(points)
}

func (h *handlers) exerciseSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	summaries, err := progress.Summaries(ctx, h.ds, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp exercise_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if summaries == nil {
		summaries = []progress.ExerciseSummary{}
	}
	return toolJSON(summaries)
}

func (h *handlers) nextSessionAdvice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	exerciseID, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid exercise_id: " + err.Error()), nil
	}

	advice, err := progress.NextSession(ctx, h.ds, UserIDFromContext(ctx), exerciseID, h.targetRPE)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("no logged sessions for exercise " + raw), nil
	}
	if err != nil {
		h.log.Error("mcp next_session_advice", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(advice)
}
