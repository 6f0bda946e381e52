// Package ingest turns exported training logs into coaching reports.
package ingest

import "github.com/claude/liftcoach/internal/progress"

// Report holds the outcome of analyzing an export.
type Report struct {
	SessionsParsed int `json:"sessions_parsed"`
	SetsParsed     int `json:"sets_parsed"`
	WorkingSets    int `json:"working_sets"`
	RatedSets      int `json:"rated_sets"`
	SkippedSets    int `json:"skipped_sets"`

	TargetRPE float64                    `json:"target_rpe"`
	Exercises []progress.ExerciseSummary `json:"exercises"`
	Advice    []progress.Advice          `json:"advice"`

	Message string `json:"message,omitempty"`
}
