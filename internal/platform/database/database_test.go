// Copyright (c) 2026 Gritsos. All rights reserved.

package database_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gritsos/gritsos-api/internal/platform/config"
	"github.com/gritsos/gritsos-api/internal/platform/database"
)

/*
TestOpen_SQLite opens and migrates a file database, then reopens it.
*/
func TestOpen_SQLite(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	url := "sqlite://" + filepath.Join(t.TempDir(), "gritsos.db")

	handle, err := database.Open(context.Background(), url, logger)
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, handle.Driver)
	assert.Nil(t, handle.Pool)
	require.NoError(t, handle.Ping(context.Background()))

	_, err = handle.SQL.Exec(`INSERT INTO users (username, level) VALUES ('alice', 1)`)
	require.NoError(t, err)
	handle.Close()

	reopened, err := database.Open(context.Background(), url, logger)
	require.NoError(t, err)
	t.Cleanup(reopened.Close)

	var level int
	require.NoError(t, reopened.SQL.QueryRow(`SELECT level FROM users WHERE username = 'alice'`).Scan(&level))
	assert.Equal(t, 1, level)
}

/*
TestOpen_InvalidURL rejects unsupported schemes before connecting.
*/
func TestOpen_InvalidURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := database.Open(context.Background(), "mysql://root@localhost/gritsos", logger)
	assert.Error(t, err)
}
