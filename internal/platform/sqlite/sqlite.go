// Copyright (c) 2026 Gritsos. All rights reserved.

// Package sqlite provides an embedded SQLite handle for single-node
// deployments, local development and tests.
//
// # Architecture
//
// The handle is capped at a single open connection. SQLite serializes writers
// anyway, and a single connection keeps ":memory:" databases alive for the
// life of the handle while making every transaction run in isolation.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	// Pure Go driver, registers "sqlite".
	_ "modernc.org/sqlite"
)

const (
	// busyTimeout is how long a statement waits on a locked database.
	busyTimeout = 5 * time.Second
	// pingTimeout is the maximum duration for a health check ping.
	pingTimeout = 2 * time.Second
	// memoryPath is the special path of a private in-memory database.
	memoryPath = ":memory:"
)

// Open creates and validates a SQLite handle.
//
// # Parameters
//   - ctx: Context for the initial ping.
//   - path: A file path, ":memory:", or a "file:" URI.
//   - logger: Structured logger for connection events.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}

	// Connection Pool Invariants
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite handle opened", slog.String("path", path))

	return db, nil
}

// Ping verifies that the SQLite handle is usable.
func Ping(ctx context.Context, db *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	return nil
}

// buildDSN appends the mandatory pragmas so they apply to every connection.
// WAL is only requested for files; in-memory databases do not support it.
func buildDSN(path string) string {
	pragmas := []string{
		"_pragma=foreign_keys(ON)",
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()),
	}

	dsn := path
	switch {
	case path == memoryPath:
		dsn = "file::memory:"
	case !strings.HasPrefix(path, "file:"):
		dsn = "file:" + path
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)", "_pragma=synchronous(NORMAL)")
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + strings.Join(pragmas, "&")
}
