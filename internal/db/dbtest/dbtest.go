// Package dbtest opens throwaway in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mind-engage/mindengage-tasks/internal/db"
)

// Open returns a migrated in-memory database private to the calling test.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	h, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// SeedUser inserts a user row and returns its id.
func SeedUser(t testing.TB, h *sqlx.DB, username, role string) int64 {
	t.Helper()

	var id int64
	err := h.QueryRowx(
		`INSERT INTO users (username, password_hash, role, created_at) VALUES (?,?,?,?) RETURNING id`,
		username, "x", role, time.Now().UnixNano(),
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}
