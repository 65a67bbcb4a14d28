// Copyright (c) 2026 Gritsos. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
	"github.com/gritsos/gritsos-api/internal/users/auth"
	"github.com/gritsos/gritsos-api/pkg/pointer"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected *apperr.AppError, got %v", err)
	return appError.HTTPStatus
}

/*
TestGate_LevelGate admits levels at or above the requirement.
*/
func TestGate_LevelGate(t *testing.T) {
	env := newTestEnv(t)
	gate := auth.NewGate(env.store, nil, time.Second)

	tests := []struct {
		name   string
		level  int
		status int
	}{
		{"level_0_forbidden", 0, http.StatusForbidden},
		{"level_1_allowed", 1, 0},
		{"level_5_allowed", 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := env.create(t, tt.name, nil, tt.level)

			ctx, authenticated, err := gate.Authenticate(context.Background(), tokenSource(principal.Token()), 1)
			if tt.status != 0 {
				assert.Equal(t, tt.status, statusOf(t, err))
				assert.False(t, authenticated.Present())
				return
			}

			require.NoError(t, err)
			assert.True(t, authenticated.Equal(principal))

			identity, ok := auth.IdentityFrom(ctx)
			require.True(t, ok)
			assert.Equal(t, auth.MethodToken, identity.Method)
			assert.Equal(t, principal.Username(), auth.PrincipalFrom(ctx).Username())
		})
	}
}

/*
TestGate_MethodSelection follows the allowed methods and the credentials present.
*/
func TestGate_MethodSelection(t *testing.T) {
	env := newTestEnv(t)
	gate := auth.NewGate(env.store, nil, time.Second)
	alice := env.create(t, "alice", pointer.To("secret"), 0)

	both := fakeSource{
		token:  alice.Token(),
		values: map[string]string{auth.FieldUsername: "alice", auth.FieldPassword: "secret"},
	}
	usernameOnly := fakeSource{values: map[string]string{auth.FieldUsername: "alice"}}

	tests := []struct {
		name       string
		source     auth.CredentialSource
		methods    []auth.Method
		status     int
		method     auth.Method
		privileged bool
	}{
		{"default_token", tokenSource(alice.Token()), nil, 0, auth.MethodToken, false},
		{"default_rejects_password", passwordSource("alice", "secret"), nil, http.StatusBadRequest, "", false},
		{"password_allowed", passwordSource("alice", "secret"), []auth.Method{auth.MethodToken, auth.MethodPassword}, 0, auth.MethodPassword, true},
		{"token_preferred", both, []auth.Method{auth.MethodToken, auth.MethodPassword}, 0, auth.MethodToken, false},
		{"password_only", both, []auth.Method{auth.MethodPassword}, 0, auth.MethodPassword, true},
		{"username_without_password", usernameOnly, []auth.Method{auth.MethodPassword}, http.StatusBadRequest, "", false},
		{"nothing", fakeSource{}, []auth.Method{auth.MethodToken, auth.MethodPassword}, http.StatusBadRequest, "", false},
		{"wrong_password", passwordSource("alice", "nope"), []auth.Method{auth.MethodPassword}, http.StatusUnauthorized, "", false},
		{"empty_password", passwordSource("alice", ""), []auth.Method{auth.MethodPassword}, http.StatusUnauthorized, "", false},
		{"unknown_token", tokenSource("forged"), nil, http.StatusUnauthorized, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, principal, err := gate.Authenticate(context.Background(), tt.source, 0, tt.methods...)
			if tt.status != 0 {
				assert.Equal(t, tt.status, statusOf(t, err))
				_, ok := auth.IdentityFrom(ctx)
				assert.False(t, ok)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.privileged, principal.Privileged())

			identity, ok := auth.IdentityFrom(ctx)
			require.True(t, ok)
			assert.Equal(t, tt.method, identity.Method)
		})
	}
}

/*
TestGate_MissingCredentialsMessage uses the documented message.
*/
func TestGate_MissingCredentialsMessage(t *testing.T) {
	gate := auth.NewGate(newTestEnv(t).store, nil, 0)

	_, _, err := gate.Authenticate(context.Background(), fakeSource{}, 0)
	require.Error(t, err)
	assert.Equal(t, "A token or password is required for authentication", err.Error())
}

// failingFinder returns err from every lookup.
type failingFinder struct{ err error }

func (finder failingFinder) FindByToken(context.Context, string) (auth.Principal, error) {
	return auth.Principal{}, finder.err
}

func (finder failingFinder) FindByCredentials(context.Context, string, *string) (auth.Principal, error) {
	return auth.Principal{}, finder.err
}

/*
TestGate_StorageFailure maps raw errors to Internal without leaking them.
*/
func TestGate_StorageFailure(t *testing.T) {
	gate := auth.NewGate(failingFinder{err: errors.New("database is locked")}, nil, time.Second)

	_, _, err := gate.Authenticate(context.Background(), tokenSource("x"), 0)
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	assert.NotContains(t, err.Error(), "locked")
}

// blockingFinder waits for the context to end.
type blockingFinder struct{}

func (blockingFinder) FindByToken(ctx context.Context, _ string) (auth.Principal, error) {
	<-ctx.Done()
	return auth.Principal{}, ctx.Err()
}

func (blockingFinder) FindByCredentials(ctx context.Context, _ string, _ *string) (auth.Principal, error) {
	<-ctx.Done()
	return auth.Principal{}, ctx.Err()
}

/*
TestGate_Timeout bounds verification time.
*/
func TestGate_Timeout(t *testing.T) {
	gate := auth.NewGate(blockingFinder{}, nil, 20*time.Millisecond)

	start := time.Now()
	_, _, err := gate.Authenticate(context.Background(), tokenSource("x"), 0)

	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	assert.Less(t, time.Since(start), time.Second)
}

/*
TestGate_Throttle locks out a username after repeated password failures.
*/
func TestGate_Throttle(t *testing.T) {
	env := newTestEnv(t)
	throttle, _ := newTestThrottle(t, 2, time.Minute)
	gate := auth.NewGate(env.store, throttle, time.Second)
	env.create(t, "alice", pointer.To("secret"), 0)

	ctx := context.Background()
	methods := []auth.Method{auth.MethodPassword}

	for i := 0; i < 2; i++ {
		_, _, err := gate.Authenticate(ctx, passwordSource("alice", "wrong"), 0, methods...)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	}

	// Even the right password is refused while locked.
	_, _, err := gate.Authenticate(ctx, passwordSource("alice", "secret"), 0, methods...)
	assert.Equal(t, http.StatusTooManyRequests, statusOf(t, err))

	// Token authentication is not throttled.
	principal, err := env.store.FindByCredentials(ctx, "alice", nil)
	require.NoError(t, err)
	_, _, err = gate.Authenticate(ctx, tokenSource(principal.Token()), 0)
	assert.NoError(t, err)
}

/*
TestGate_ThrottleResetOnSuccess clears failures after a verified password.
*/
func TestGate_ThrottleResetOnSuccess(t *testing.T) {
	env := newTestEnv(t)
	throttle, server := newTestThrottle(t, 2, time.Minute)
	gate := auth.NewGate(env.store, throttle, time.Second)
	env.create(t, "alice", pointer.To("secret"), 0)

	ctx := context.Background()
	methods := []auth.Method{auth.MethodPassword}

	_, _, err := gate.Authenticate(ctx, passwordSource("alice", "wrong"), 0, methods...)
	require.Error(t, err)
	assert.True(t, server.Exists("auth:failures:alice"))

	_, _, err = gate.Authenticate(ctx, passwordSource("alice", "secret"), 0, methods...)
	require.NoError(t, err)
	assert.False(t, server.Exists("auth:failures:alice"))
}

/*
TestGate_ThrottleUnavailable fails open.
*/
func TestGate_ThrottleUnavailable(t *testing.T) {
	env := newTestEnv(t)
	throttle, server := newTestThrottle(t, 1, time.Minute)
	server.Close()

	gate := auth.NewGate(env.store, throttle, 5*time.Second)
	env.create(t, "alice", pointer.To("secret"), 0)

	_, principal, err := gate.Authenticate(context.Background(), passwordSource("alice", "secret"), 0, auth.MethodPassword)
	require.NoError(t, err)
	assert.True(t, principal.Privileged())
}
