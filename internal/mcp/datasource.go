package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/liftcoach/internal/progress"
	"github.com/claude/liftcoach/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. *storage.DB and
// *storage.SnapshotDB (local) and HTTPClient (remote via REST API) satisfy
// this interface.
type DataSource interface {
	progress.Source
	GetDataStats(ctx context.Context, userID uuid.UUID) (*storage.DataStats, error)
}

// Compile-time checks: the storage backends satisfy DataSource.
var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*storage.SnapshotDB)(nil)
)
