// Copyright (c) 2026 Gritsos. All rights reserved.

/*
Package database opens the configured relational store and brings its schema
up to date.

Two drivers are supported:

  - PostgreSQL through a pgx connection pool, for production.
  - SQLite through modernc.org/sqlite, for single-node deployments and tests.

The caller receives a [Handle] carrying exactly one of the two connections.
*/
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gritsos/gritsos-api/internal/platform/config"
	"github.com/gritsos/gritsos-api/internal/platform/migration"
	"github.com/gritsos/gritsos-api/internal/platform/postgres"
	"github.com/gritsos/gritsos-api/internal/platform/sqlite"
)

// Handle is an open, migrated database.
type Handle struct {
	Driver config.Driver
	Pool   *pgxpool.Pool
	SQL    *sql.DB
}

/*
Open connects to the database named by rawURL and applies pending migrations.

Parameters:
  - ctx: Context for the initial connection attempt.
  - rawURL: DATABASE_URL value (postgres://, sqlite:// or file:).
  - logger: Structured logger.

Returns:
  - *Handle: The ready-to-use connection
  - error: When the URL is invalid, the database is unreachable or a migration fails
*/
func Open(ctx context.Context, rawURL string, logger *slog.Logger) (*Handle, error) {
	driver, dsn, err := config.ParseDatabaseURL(rawURL)
	if err != nil {
		return nil, err
	}

	switch driver {
	case config.DriverPostgres:
		if err := migration.RunUp(dsn, logger); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPool(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		return &Handle{Driver: driver, Pool: pool}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}

		if err := migration.RunUpSQLite(db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Handle{Driver: driver, SQL: db}, nil
	}

	return nil, fmt.Errorf("database: unsupported driver %q", driver)
}

// Ping verifies that the underlying connection is healthy.
func (handle *Handle) Ping(ctx context.Context) error {
	if handle.Pool != nil {
		return postgres.Ping(ctx, handle.Pool)
	}
	return sqlite.Ping(ctx, handle.SQL)
}

// Close releases the underlying connection.
func (handle *Handle) Close() {
	if handle.Pool != nil {
		handle.Pool.Close()
	}
	if handle.SQL != nil {
		_ = handle.SQL.Close()
	}
}
