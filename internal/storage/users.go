package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserIDByLogin resolves a Tailscale login name to the persistence service's
// user ID. Logins are matched case-insensitively against account emails.
func (db *DB) UserIDByLogin(ctx context.Context, login string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`SELECT id FROM auth.users WHERE lower(email) = lower($1)`, login,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("looking up user: %w", err)
	}
	return id, nil
}
