package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/liftcoach/internal/coach"
)

type e1rmRequest struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

func (s *Server) handleE1RM(w http.ResponseWriter, r *http.Request) {
	var req e1rmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := errors.Join(coach.CheckWeight("weight", req.Weight), coach.CheckReps("reps", req.Reps)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"e1rm": coach.E1RM(req.Weight, req.Reps)})
}

type nextWeightRequest struct {
	LastWeight float64  `json:"last_weight"`
	LastRPE    float64  `json:"last_rpe"`
	TargetRPE  *float64 `json:"target_rpe"`
}

type nextWeightResponse struct {
	SuggestedWeight float64 `json:"suggested_weight"`
	RPEDifference   float64 `json:"rpe_difference"`
	TargetRPE       float64 `json:"target_rpe"`
}

func (s *Server) handleNextWeight(w http.ResponseWriter, r *http.Request) {
	var req nextWeightRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	target := s.opts.DefaultTargetRPE
	if req.TargetRPE != nil {
		target = *req.TargetRPE
	}
	if err := errors.Join(
		coach.CheckWeight("last_weight", req.LastWeight),
		coach.CheckRPE("last_rpe", req.LastRPE),
		coach.CheckRPE("target_rpe", target),
	); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, nextWeightResponse{
		SuggestedWeight: coach.SuggestNextWeight(req.LastWeight, req.LastRPE, target),
		RPEDifference:   req.LastRPE - target,
		TargetRPE:       target,
	})
}

type dailyPerformanceRequest struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
	RPE    float64 `json:"rpe"`
}

func (s *Server) handleDailyPerformance(w http.ResponseWriter, r *http.Request) {
	var req dailyPerformanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := errors.Join(
		coach.CheckWeight("weight", req.Weight),
		coach.CheckReps("reps", req.Reps),
		coach.CheckRPE("rpe", req.RPE),
	); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"e1rm":       coach.E1RM(req.Weight, req.Reps),
		"daily_e1rm": coach.DailyPerformance(req.Weight, req.Reps, req.RPE),
	})
}

func (s *Server) handleRPEFeedback(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("rpe")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rpe parameter required"})
		return
	}
	rpe, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid rpe: " + raw})
		return
	}
	if err := coach.CheckRPE("rpe", rpe); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rpe": rpe, "feedback": coach.RPEFeedback(rpe)})
}

func (s *Server) handleRPEScale(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, coach.RPEScale())
}

type volumeLoadRequest struct {
	Sets []e1rmRequest `json:"sets"`
}

type volumeLoadResponse struct {
	PerSet []float64 `json:"per_set"`
	Total  float64   `json:"total"`
}

func (s *Server) handleVolumeLoad(w http.ResponseWriter, r *http.Request) {
	var req volumeLoadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp := volumeLoadResponse{PerSet: make([]float64, 0, len(req.Sets))}
	for _, set := range req.Sets {
		if err := errors.Join(coach.CheckWeight("weight", set.Weight), coach.CheckReps("reps", set.Reps)); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		v := coach.VolumeLoad(set.Weight, set.Reps)
		resp.PerSet = append(resp.PerSet, v)
		resp.Total += v
	}
	writeJSON(w, http.StatusOK, resp)
}

type weightRangeRequest struct {
	OneRepMax  float64 `json:"one_rep_max"`
	PercentMin float64 `json:"percent_min"`
	PercentMax float64 `json:"percent_max"`
}

func (s *Server) handleWeightRange(w http.ResponseWriter, r *http.Request) {
	var req weightRangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := errors.Join(
		coach.CheckWeight("one_rep_max", req.OneRepMax),
		coach.CheckWeight("percent_min", req.PercentMin),
		coach.CheckWeight("percent_max", req.PercentMax),
	); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, coach.WeightRange(req.OneRepMax, req.PercentMin, req.PercentMax))
}
