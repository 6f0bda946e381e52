package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/progress"
)

func (s *Server) handleStrength(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	exerciseID, err := optionalUUID(r, "exercise")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if exerciseID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	points, err := progress.Strength(r.Context(), s.store, uid, exerciseID, start, end)
	if err != nil {
		s.storeError(w, err, "strength progress")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var weekly bool
	switch agg := r.URL.Query().Get("agg"); agg {
	case "daily", "":
	case "weekly":
		weekly = true
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "agg must be daily or weekly"})
		return
	}

	exerciseID, err := optionalUUID(r, "exercise")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	points, err := progress.Volume(r.Context(), s.store, uid, exerciseID, start, end, weekly)
	if err != nil {
		s.storeError(w, err, "volume progress")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleExerciseSummaries(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	summaries, err := progress.Summaries(r.Context(), s.store, uid, start, end)
	if err != nil {
		s.storeError(w, err, "exercise summaries")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(summaries))
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	uid, exerciseID, ok := s.exerciseRequest(w, r)
	if !ok {
		return
	}
	advice, err := progress.NextSession(r.Context(), s.store, uid, exerciseID, s.opts.DefaultTargetRPE)
	if err != nil {
		s.storeError(w, err, "exercise history")
		return
	}
	writeJSON(w, http.StatusOK, advice)
}
