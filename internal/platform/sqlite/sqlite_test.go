// Copyright (c) 2026 Gritsos. All rights reserved.

package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestBuildDSN attaches pragmas for each path form.
*/
func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"memory", ":memory:", "file::memory:?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"},
		{"file", "data/gritsos.db", "file:data/gritsos.db?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"},
		{"uri_with_query", "file:gritsos.db?mode=rwc", "file:gritsos.db?mode=rwc&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildDSN(tt.path))
		})
	}
}

/*
TestOpen_File enables foreign keys and WAL on file databases.
*/
func TestOpen_File(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "gritsos.db")

	db, err := Open(context.Background(), path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var foreignKeys int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}
