// Copyright (c) 2026 Gritsos. All rights reserved.

package auth_test

import (
	"context"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
	"github.com/gritsos/gritsos-api/internal/users/auth"
	"github.com/gritsos/gritsos-api/pkg/pointer"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9+/]{48}$`)

/*
TestStore_CreateIssuesOneToken leaves exactly one live token per new principal.
*/
func TestStore_CreateIssuesOneToken(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		username string
		password *string
		level    int
	}{
		{"with_password", "alice", pointer.To("secret"), 0},
		{"token_only", "sensor-7", nil, 0},
		{"admin", "root", pointer.To("hunter2"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := env.create(t, tt.username, tt.password, tt.level)

			assert.Equal(t, tt.username, principal.Username())
			assert.Equal(t, tt.level, principal.Level())
			assert.False(t, principal.Privileged())
			assert.Regexp(t, tokenPattern, principal.Token())
			assert.Equal(t, 1, env.liveTokens(t, principal.ID()))
		})
	}
}

/*
TestStore_RoundTrip verifies the stored password and rejects a wrong one.
*/
func TestStore_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.create(t, "alice", pointer.To("secret"), 0)

	found, err := env.store.FindByCredentials(ctx, "alice", pointer.To("secret"))
	require.NoError(t, err)
	require.True(t, found.Present())
	assert.Equal(t, "alice", found.Username())
	assert.NotEmpty(t, found.Token())
	assert.Equal(t, created.Token(), found.Token())
	assert.True(t, found.Privileged())

	wrong, err := env.store.FindByCredentials(ctx, "alice", pointer.To("wrong"))
	require.NoError(t, err)
	assert.False(t, wrong.Present())

	unknown, err := env.store.FindByCredentials(ctx, "mallory", pointer.To("secret"))
	require.NoError(t, err)
	assert.False(t, unknown.Present())
}

/*
TestStore_PrivilegeDerivation depends on the lookup path only.
*/
func TestStore_PrivilegeDerivation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.create(t, "alice", pointer.To("secret"), 1)

	viaToken, err := env.store.FindByToken(ctx, created.Token())
	require.NoError(t, err)
	require.True(t, viaToken.Present())
	assert.False(t, viaToken.Privileged())

	viaPassword, err := env.store.FindByCredentials(ctx, "alice", pointer.To("secret"))
	require.NoError(t, err)
	assert.True(t, viaPassword.Privileged())

	viaName, err := env.store.FindByCredentials(ctx, "alice", nil)
	require.NoError(t, err)
	assert.False(t, viaName.Privileged())

	assert.True(t, viaToken.Equal(viaPassword))
	assert.Equal(t, viaToken.ID(), viaPassword.ID())
}

/*
TestStore_PasswordOnTokenOnlyPrincipal never matches without a stored hash.
*/
func TestStore_PasswordOnTokenOnlyPrincipal(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "sensor-7", nil, 0)

	for _, candidate := range []string{"", "anything"} {
		principal, err := env.store.FindByCredentials(context.Background(), "sensor-7", pointer.To(candidate))
		require.NoError(t, err)
		assert.False(t, principal.Present())
	}
}

/*
TestStore_CreateValidation rejects bad input before touching storage.
*/
func TestStore_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		username string
		password *string
		level    int
	}{
		{"empty_password", "alice", pointer.To(""), 0},
		{"missing_username", "", pointer.To("secret"), 0},
		{"negative_level", "alice", nil, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.store.Create(context.Background(), tt.username, tt.password, tt.level)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
		})
	}

	assert.Zero(t, env.totalTokens(t))
}

/*
TestStore_DuplicateCreate returns Conflict and writes no token for the rejected attempt.
*/
func TestStore_DuplicateCreate(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "alice", pointer.To("secret"), 0)

	_, err := env.store.Create(context.Background(), "alice", pointer.To("other"), 2)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusConflict, appError.HTTPStatus)
	assert.Contains(t, appError.Message, "UNIQUE constraint failed")
	assert.Equal(t, 1, env.totalTokens(t))
}

/*
TestIssuer_SequentialRotation keeps one live token and invalidates every previous one.
*/
func TestIssuer_SequentialRotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	principal := env.create(t, "alice", nil, 0)
	issued := []string{principal.Token()}

	for i := 0; i < 5; i++ {
		token, err := env.issuer.Rotate(ctx, principal.ID())
		require.NoError(t, err)
		issued = append(issued, token)
		assert.Equal(t, 1, env.liveTokens(t, principal.ID()))
	}

	for _, old := range issued[:len(issued)-1] {
		found, err := env.store.FindByToken(ctx, old)
		require.NoError(t, err)
		assert.False(t, found.Present())
	}

	current, err := env.store.FindByToken(ctx, issued[len(issued)-1])
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username())

	// Revoked rows are kept with a NULL owner.
	assert.Equal(t, len(issued), env.totalTokens(t))
}

/*
TestIssuer_ConcurrentRotation leaves exactly one live token after parallel rotations.
*/
func TestIssuer_ConcurrentRotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	principal := env.create(t, "alice", nil, 0)

	const rotations = 16
	tokens := make([]string, rotations)

	var group errgroup.Group
	for i := 0; i < rotations; i++ {
		group.Go(func() error {
			token, err := env.issuer.Rotate(ctx, principal.ID())
			tokens[i] = token
			return err
		})
	}
	require.NoError(t, group.Wait())

	assert.Equal(t, 1, env.liveTokens(t, principal.ID()))

	live := 0
	for _, token := range append(tokens, principal.Token()) {
		found, err := env.store.FindByToken(ctx, token)
		require.NoError(t, err)
		if found.Present() {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

/*
TestIssuer_RotateUnknownPrincipal reports NotFound and writes nothing.
*/
func TestIssuer_RotateUnknownPrincipal(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.issuer.Rotate(context.Background(), 404)
	assert.ErrorIs(t, err, auth.ErrPrincipalNotFound)
	assert.Zero(t, env.totalTokens(t))
}

/*
TestStore_MissingTokenBackfill issues a fresh token when the row was deleted out of band.
*/
func TestStore_MissingTokenBackfill(t *testing.T) {
	ctx := context.Background()

	t.Run("credential_lookup", func(t *testing.T) {
		env := newTestEnv(t)
		principal := env.create(t, "sensor-7", nil, 0)

		_, err := env.db.Exec(`DELETE FROM tokens WHERE user_id = ?`, principal.ID())
		require.NoError(t, err)

		found, err := env.store.FindByCredentials(ctx, "sensor-7", nil)
		require.NoError(t, err)
		require.True(t, found.Present())
		assert.Regexp(t, tokenPattern, found.Token())
		assert.NotEqual(t, principal.Token(), found.Token())
		assert.Equal(t, 1, env.liveTokens(t, principal.ID()))

		// A second lookup reads the backfilled token instead of writing another.
		again, err := env.store.FindByCredentials(ctx, "sensor-7", nil)
		require.NoError(t, err)
		assert.Equal(t, found.Token(), again.Token())
	})

	t.Run("reissue", func(t *testing.T) {
		env := newTestEnv(t)
		principal := env.create(t, "sensor-7", nil, 0)

		_, err := env.db.Exec(`DELETE FROM tokens WHERE user_id = ?`, principal.ID())
		require.NoError(t, err)

		reissued, err := env.store.Reissue(ctx, principal.ID())
		require.NoError(t, err)
		assert.Regexp(t, tokenPattern, reissued.Token())
		assert.Equal(t, 1, env.liveTokens(t, principal.ID()))
	})
}

/*
TestStore_ConcurrentBackfill agrees on a single token.
*/
func TestStore_ConcurrentBackfill(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	principal := env.create(t, "alice", pointer.To("secret"), 0)
	_, err := env.db.Exec(`DELETE FROM tokens`)
	require.NoError(t, err)

	const lookups = 8
	tokens := make([]string, lookups)

	var group errgroup.Group
	for i := 0; i < lookups; i++ {
		group.Go(func() error {
			found, err := env.store.FindByCredentials(ctx, "alice", pointer.To("secret"))
			if err == nil {
				tokens[i] = found.Token()
			}
			return err
		})
	}
	require.NoError(t, group.Wait())

	for _, token := range tokens {
		assert.Equal(t, tokens[0], token)
	}
	assert.Equal(t, 1, env.liveTokens(t, principal.ID()))
}

/*
TestStore_FindByID loads no token and no privilege.
*/
func TestStore_FindByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.create(t, "alice", pointer.To("secret"), 2)

	found, err := env.store.FindByID(ctx, created.ID())
	require.NoError(t, err)
	require.True(t, found.Present())
	assert.Equal(t, "alice", found.Username())
	assert.Equal(t, 2, found.Level())
	assert.False(t, found.HasToken())
	assert.Panics(t, func() { found.Token() })

	missing, err := env.store.FindByID(ctx, created.ID()+100)
	require.NoError(t, err)
	assert.False(t, missing.Present())

	_, err = env.store.Reissue(ctx, created.ID()+100)
	assert.ErrorIs(t, err, auth.ErrPrincipalNotFound)
}

/*
TestStore_FindByToken treats empty and unknown tokens as absent.
*/
func TestStore_FindByToken(t *testing.T) {
	env := newTestEnv(t)

	for _, token := range []string{"", "does-not-exist"} {
		principal, err := env.store.FindByToken(context.Background(), token)
		require.NoError(t, err)
		assert.False(t, principal.Present())
	}
}
