package server

import (
	"net/http"
	"strconv"

	"github.com/claude/liftcoach/internal/coach"
	"github.com/claude/liftcoach/internal/ingest/alpha"
)

// maxExportBytes caps an uploaded export.
const maxExportBytes = 10 << 20

// handleAnalyzeAlpha reports summaries and next-session advice for an
// Alpha Progression CSV export posted as the request body.
func (s *Server) handleAnalyzeAlpha(w http.ResponseWriter, r *http.Request) {
	target := s.opts.DefaultTargetRPE
	if raw := r.URL.Query().Get("target_rpe"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid target_rpe: " + raw})
			return
		}
		target = v
	}
	if err := coach.CheckRPE("target_rpe", target); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxExportBytes)
	report, err := alpha.Analyze(body, userIDFromContext(r), target)
	if err != nil {
		s.log.Error("alpha analysis error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("alpha export analyzed",
		"sessions", report.SessionsParsed,
		"working_sets", report.WorkingSets,
		"exercises", len(report.Exercises),
	)
	writeJSON(w, http.StatusOK, report)
}
