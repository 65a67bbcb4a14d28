// Copyright (c) 2026 Gritsos. All rights reserved.

package dberr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
	"github.com/gritsos/gritsos-api/internal/platform/dberr"
)

/*
TestWrap classifies driver errors into application errors.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"pgx_no_rows", pgx.ErrNoRows, http.StatusNotFound},
		{"sql_no_rows", fmt.Errorf("scan: %w", sql.ErrNoRows), http.StatusNotFound},
		{"pg_unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation, Message: `duplicate key value violates unique constraint "users_username_key"`}, http.StatusConflict},
		{"sqlite_unique", errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"), http.StatusConflict},
		{"pg_other", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, http.StatusInternalServerError},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
		{"already_classified", apperr.Forbidden("no"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "probe_failed")
			appError := apperr.As(wrapped)
			require.NotNil(t, appError)
			assert.Equal(t, tt.status, appError.HTTPStatus)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "noop"))
}

/*
TestWrap_ConflictMessage keeps the constraint text reported by the database.
*/
func TestWrap_ConflictMessage(t *testing.T) {
	err := dberr.Wrap(&pgconn.PgError{
		Code:    pgerrcode.UniqueViolation,
		Message: `duplicate key value violates unique constraint "users_username_key"`,
	}, "create_user_failed")

	assert.Equal(t, `duplicate key value violates unique constraint "users_username_key"`, err.Error())
}
