package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/ingest"
	"github.com/claude/liftcoach/internal/ingest/alpha"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesAnalyzed int
	FilesSkipped  int
	FilesErrored  int
}

// Result is the report of one export file.
type Result struct {
	Path   string
	Cached bool
	Report *ingest.Report
}

// Uploader finds Alpha Progression CSV exports and has each one analyzed,
// by the server when a client is set, locally otherwise.
type Uploader struct {
	client    *Client
	state     *StateDB
	userID    uuid.UUID
	targetRPE float64
	force     bool
	log       *slog.Logger
	stats     Stats
}

// New creates a new Uploader. client nil analyzes locally as userID; state
// nil disables the cache. force re-sends files already in the cache.
func New(client *Client, state *StateDB, userID uuid.UUID, targetRPE float64, force bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client:    client,
		state:     state,
		userID:    userID,
		targetRPE: targetRPE,
		force:     force,
		log:       log,
	}
}

// Run analyzes path, a CSV file or a directory of them.
func (u *Uploader) Run(ctx context.Context, path string) ([]Result, *Stats, error) {
	files, err := ExportFiles(path)
	if err != nil {
		return nil, &u.stats, err
	}

	var results []Result
	for _, f := range files {
		u.stats.FilesTotal++
		res, err := u.processFile(ctx, f)
		if err != nil {
			if ctx.Err() != nil {
				return results, &u.stats, ctx.Err()
			}
			u.log.Warn("analysis failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}
		if res.Cached {
			u.stats.FilesSkipped++
		} else {
			u.stats.FilesAnalyzed++
		}
		results = append(results, res)
	}
	return results, &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, f string) (Result, error) {
	info, err := os.Stat(f)
	if err != nil {
		return Result{}, err
	}
	hash, err := HashFile(f)
	if err != nil {
		return Result{}, fmt.Errorf("hashing: %w", err)
	}

	if u.state != nil && !u.force {
		report, ok, err := u.state.Cached(f, info.Size(), hash, u.targetRPE)
		if err != nil {
			u.log.Warn("state check failed", "file", f, "error", err)
		} else if ok {
			u.log.Info("unchanged since last analysis", "file", f)
			return Result{Path: f, Cached: true, Report: report}, nil
		}
	}

	data, err := os.ReadFile(f)
	if err != nil {
		return Result{}, err
	}

	var report *ingest.Report
	if u.client != nil {
		report, err = u.client.Analyze(ctx, data, u.targetRPE)
	} else {
		report, err = alpha.Analyze(bytes.NewReader(data), u.userID, u.targetRPE)
	}
	if err != nil {
		return Result{}, err
	}
	u.log.Info("analyzed", "file", f, "sessions", report.SessionsParsed, "exercises", len(report.Exercises))

	if u.state != nil {
		if err := u.state.MarkAnalyzed(f, info.Size(), hash, u.targetRPE, report); err != nil {
			u.log.Warn("state update failed", "file", f, "error", err)
		}
	}
	return Result{Path: f, Report: report}, nil
}

// ExportFiles returns path itself when it is a file, or the .csv files
// directly inside it, sorted by name.
func ExportFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
