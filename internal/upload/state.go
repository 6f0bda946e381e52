package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/claude/liftcoach/internal/ingest"
)

// StateDB remembers the report of every analyzed export so an unchanged
// file is not sent again.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS analyzed_exports (
		path        TEXT NOT NULL,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		target_rpe  REAL NOT NULL,
		report      TEXT NOT NULL,
		analyzed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (path, target_rpe)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Cached returns the stored report for a file with the same size and hash
// analyzed at the same target RPE. ok is false when there is none.
func (s *StateDB) Cached(path string, size int64, hash string, targetRPE float64) (report *ingest.Report, ok bool, err error) {
	var raw string
	err = s.db.QueryRow(
		`SELECT report FROM analyzed_exports WHERE path = ? AND size = ? AND hash = ? AND target_rpe = ?`,
		path, size, hash, targetRPE,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	report = &ingest.Report{}
	if err := json.Unmarshal([]byte(raw), report); err != nil {
		return nil, false, fmt.Errorf("decoding cached report: %w", err)
	}
	return report, true, nil
}

// MarkAnalyzed records the report of a successfully analyzed file.
func (s *StateDB) MarkAnalyzed(path string, size int64, hash string, targetRPE float64, report *ingest.Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO analyzed_exports (path, size, hash, target_rpe, report) VALUES (?, ?, ?, ?, ?)`,
		path, size, hash, targetRPE, string(raw),
	)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
