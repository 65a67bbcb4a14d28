// Copyright (c) 2026 Gritsos. All rights reserved.

package auth_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gritsos/gritsos-api/internal/platform/migration"
	"github.com/gritsos/gritsos-api/internal/platform/sec"
	"github.com/gritsos/gritsos-api/internal/platform/sqlite"
	"github.com/gritsos/gritsos-api/internal/users/auth"
)

// testEnv bundles a migrated in-memory database and the components on top of it.
type testEnv struct {
	db     *sql.DB
	issuer *auth.TokenIssuer
	store  *auth.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migration.RunUpSQLite(db, logger))

	repository := auth.NewSQLiteRepository(db)
	issuer := auth.NewTokenIssuer(repository, sec.DefaultTokenLength)
	store := auth.NewStore(repository, issuer, sec.NewHasher(bcrypt.MinCost))

	return &testEnv{db: db, issuer: issuer, store: store}
}

// liveTokens counts token rows owned by the principal.
func (env *testEnv) liveTokens(t *testing.T, id int64) int {
	t.Helper()

	var count int
	err := env.db.QueryRow(`SELECT COUNT(*) FROM tokens WHERE user_id = ?`, id).Scan(&count)
	require.NoError(t, err)
	return count
}

// totalTokens counts every token row, live or revoked.
func (env *testEnv) totalTokens(t *testing.T) int {
	t.Helper()

	var count int
	require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM tokens`).Scan(&count))
	return count
}

func (env *testEnv) create(t *testing.T, username string, password *string, level int) auth.Principal {
	t.Helper()

	principal, err := env.store.Create(context.Background(), username, password, level)
	require.NoError(t, err)
	require.True(t, principal.Present())
	return principal
}

// fakeSource is an in-memory CredentialSource.
type fakeSource struct {
	token  string
	values map[string]string
}

func (source fakeSource) Token() (string, bool) {
	return source.token, source.token != ""
}

func (source fakeSource) Value(key string) (string, bool) {
	value, ok := source.values[key]
	return value, ok
}

func tokenSource(token string) fakeSource {
	return fakeSource{token: token}
}

func passwordSource(username, password string) fakeSource {
	return fakeSource{values: map[string]string{auth.FieldUsername: username, auth.FieldPassword: password}}
}
