package upload

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/ingest"
)

const benchCSV = `"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

var testUser = uuid.MustParse("5b0f6c2e-8d1a-4c3e-9f7a-1d2e3f4a5b6c")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func fastClient(url string) *Client {
	c := NewClient(url, "test-key")
	c.backoff = time.Millisecond
	return c
}

// TestClientAnalyze verifies the export is posted with the API key and
// target RPE and the report is decoded.
func TestClientAnalyze(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/analyze/alpha" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("X-API-Key = %q", got)
		}
		if got := r.URL.Query().Get("target_rpe"); got != "7.5" {
			t.Errorf("target_rpe = %q, want 7.5", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != benchCSV {
			t.Errorf("body not forwarded verbatim")
		}
		json.NewEncoder(w).Encode(ingest.Report{SessionsParsed: 1, TargetRPE: 7.5})
	}))
	defer ts.Close()

	report, err := fastClient(ts.URL+"/").Analyze(context.Background(), []byte(benchCSV), 7.5)
	if err != nil {
		t.Fatal(err)
	}
	if report.SessionsParsed != 1 || report.TargetRPE != 7.5 {
		t.Errorf("report = %+v", report)
	}
}

// TestClientRetriesServerErrors verifies 5xx replies are retried.
func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(ingest.Report{SessionsParsed: 2})
	}))
	defer ts.Close()

	report, err := fastClient(ts.URL).Analyze(context.Background(), []byte(benchCSV), 8)
	if err != nil {
		t.Fatal(err)
	}
	if report.SessionsParsed != 2 {
		t.Errorf("sessions = %d, want 2", report.SessionsParsed)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

// TestClientNoRetryOnClientError verifies 4xx replies fail on the first try.
func TestClientNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
	}))
	defer ts.Close()

	if _, err := fastClient(ts.URL).Analyze(context.Background(), []byte(benchCSV), 8); err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestStateDBRoundTrip(t *testing.T) {
	state, err := OpenStateDB(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	if _, ok, err := state.Cached("a.csv", 10, "abc", 8); err != nil || ok {
		t.Fatalf("empty state: ok=%v err=%v", ok, err)
	}

	want := &ingest.Report{SessionsParsed: 3, TargetRPE: 8}
	if err := state.MarkAnalyzed("a.csv", 10, "abc", 8, want); err != nil {
		t.Fatal(err)
	}

	got, ok, err := state.Cached("a.csv", 10, "abc", 8)
	if err != nil || !ok {
		t.Fatalf("cached: ok=%v err=%v", ok, err)
	}
	if got.SessionsParsed != 3 {
		t.Errorf("sessions = %d, want 3", got.SessionsParsed)
	}

	// A changed file or another target misses.
	if _, ok, _ := state.Cached("a.csv", 10, "def", 8); ok {
		t.Error("hash change should miss")
	}
	if _, ok, _ := state.Cached("a.csv", 10, "abc", 7); ok {
		t.Error("target change should miss")
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := writeExport(t, dir, "a.csv", benchCSV)
	b := writeExport(t, dir, "b.csv", benchCSV+"\n")

	ha, err := HashFile(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, _ := HashFile(b)
	if len(ha) != 64 {
		t.Errorf("hash length = %d, want 64", len(ha))
	}
	if ha == hb {
		t.Error("different content should hash differently")
	}
}

func TestExportFiles(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "b.csv", benchCSV)
	writeExport(t, dir, "a.CSV", benchCSV)
	writeExport(t, dir, "notes.txt", "x")
	if err := os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := ExportFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.CSV" || filepath.Base(files[1]) != "b.csv" {
		t.Errorf("files = %v", files)
	}

	single, err := ExportFiles(files[1])
	if err != nil || len(single) != 1 {
		t.Errorf("single file: %v, %v", single, err)
	}

	if _, err := ExportFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

// TestRunLocalWithCache verifies local analysis and that a second run of
// an unchanged file is served from the state database.
func TestRunLocalWithCache(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "export.csv", benchCSV)
	writeExport(t, dir, "broken.csv", "1;abc;5;1\n")

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	results, stats, err := New(nil, state, testUser, 8, false, discardLogger()).Run(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesTotal != 2 || stats.FilesAnalyzed != 1 || stats.FilesErrored != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	report := results[0].Report
	if len(report.Advice) != 1 || report.Advice[0].SuggestedWeight != 97.4 {
		t.Errorf("advice = %+v", report.Advice)
	}

	results, stats, err = New(nil, state, testUser, 8, false, discardLogger()).Run(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesSkipped != 1 || !results[0].Cached {
		t.Errorf("second run stats = %+v cached = %v", stats, results[0].Cached)
	}
	if results[0].Report.Advice[0].SuggestedWeight != 97.4 {
		t.Error("cached report differs")
	}

	_, stats, _ = New(nil, state, testUser, 8, true, discardLogger()).Run(context.Background(), dir)
	if stats.FilesAnalyzed != 1 || stats.FilesSkipped != 0 {
		t.Errorf("forced run stats = %+v", stats)
	}
}
