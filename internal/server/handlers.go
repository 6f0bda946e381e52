package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/storage"
)

// defaultRange is the window used when a request names no start.
const defaultRange = 30 * 24 * time.Hour

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	stats, err := s.store.GetDataStats(r.Context(), uid)
	if err != nil {
		s.storeError(w, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSets(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	exerciseID, err := optionalUUID(r, "exercise")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sets, err := s.store.QuerySetLogs(r.Context(), uid, start, end, exerciseID)
	if err != nil {
		s.storeError(w, err, "sets")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sets))
}

func (s *Server) handleLatestSession(w http.ResponseWriter, r *http.Request) {
	uid, exerciseID, ok := s.exerciseRequest(w, r)
	if !ok {
		return
	}
	sets, err := s.store.LatestSession(r.Context(), uid, exerciseID)
	if err != nil {
		s.storeError(w, err, "latest session")
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleOneRepMax(w http.ResponseWriter, r *http.Request) {
	uid, exerciseID, ok := s.exerciseRequest(w, r)
	if !ok {
		return
	}
	m, err := s.store.GetOneRepMax(r.Context(), uid, exerciseID)
	if err != nil {
		s.storeError(w, err, "one-rep max")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handlePrescription(w http.ResponseWriter, r *http.Request) {
	uid, exerciseID, ok := s.exerciseRequest(w, r)
	if !ok {
		return
	}
	p, err := s.store.LatestPrescription(r.Context(), uid, exerciseID)
	if err != nil {
		s.storeError(w, err, "prescription")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// exerciseRequest resolves the caller and the {id} URL parameter.
func (s *Server) exerciseRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	exerciseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return uid, exerciseID, true
}

// storeError maps storage.ErrNotFound to 404 and anything else to 500.
func (s *Server) storeError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": what + " not found"})
		return
	}
	s.log.Error("store query failed", "query", what, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// writeJSON encodes v before writing the status so an unencodable value
// (NaN, Inf) becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Default().Error("encoding response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "encoding response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// decodeJSON reads a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func optionalUUID(r *http.Request, param string) (uuid.UUID, error) {
	v := r.URL.Query().Get(param)
	if v == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", param, err)
	}
	return id, nil
}

// parseTimeRange reads start/end as RFC 3339 or YYYY-MM-DD. A date-only end
// covers that whole day. Without a start the range is the last 30 days.
func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}

	if startStr == "" {
		return end.Add(-defaultRange), end, nil
	}
	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
		}
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start must be before end")
	}
	return start, end, nil
}
