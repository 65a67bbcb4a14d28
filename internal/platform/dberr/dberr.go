// Copyright (c) 2026 Gritsos. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Both storage drivers in use report their failures here: pgx for PostgreSQL
// and database/sql (modernc.org/sqlite) for the embedded store.
package dberr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// sqliteUniqueMarker prefixes every unique-constraint failure reported by SQLite.
const sqliteUniqueMarker = "UNIQUE constraint failed"

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// Unique violations become [apperr.Conflict] carrying the constraint message
// reported by the database.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Already classified
	if apperr.IsAppError(err) {
		return err
	}

	// 2. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	// 3. Unique constraint violations
	if message, ok := UniqueViolation(err); ok {
		return apperr.Conflict(message)
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// UniqueViolation reports whether err is a unique-constraint violation and
// returns the database message describing it.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.Message, true
	}
	if err != nil && strings.Contains(err.Error(), sqliteUniqueMarker) {
		return err.Error(), true
	}
	return "", false
}
