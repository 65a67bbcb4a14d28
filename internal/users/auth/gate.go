// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
	"github.com/gritsos/gritsos-api/internal/platform/ctxutil"
	"github.com/gritsos/gritsos-api/internal/platform/metrics"
)

// # Contracts & Types

// CredentialSource exposes the credentials carried by a request.
type CredentialSource interface {
	// Token returns the bearer token and whether a non-empty one was sent.
	Token() (string, bool)

	// Value returns a named request parameter and whether the key was sent.
	Value(key string) (string, bool)
}

// PrincipalFinder verifies credentials. [*Store] implements it.
type PrincipalFinder interface {
	FindByToken(ctx context.Context, token string) (Principal, error)
	FindByCredentials(ctx context.Context, username string, password *string) (Principal, error)
}

// DefaultMethods are allowed when Authenticate is called without methods.
var DefaultMethods = []Method{MethodToken}

// Gate authenticates requests and enforces privilege levels.
type Gate struct {
	finder   PrincipalFinder
	throttle Throttle
	timeout  time.Duration
}

// NewGate constructs a [Gate]. throttle may be nil; timeout <= 0 disables the deadline.
func NewGate(finder PrincipalFinder, throttle Throttle, timeout time.Duration) *Gate {
	return &Gate{finder: finder, throttle: throttle, timeout: timeout}
}

/*
Authenticate selects a method, verifies the credentials and checks the level.

Description: The token method is used when allowed and a token was sent;
otherwise the password method when allowed and both username and password
were sent. Verification failures give Unauthorized, a level below
requiredLevel gives Forbidden.

Parameters:
  - ctx: context.Context
  - source: CredentialSource
  - requiredLevel: int
  - methods: Allowed methods, [DefaultMethods] when empty

Returns:
  - context.Context: ctx carrying the [Identity] on success
  - Principal: The authenticated principal
  - error: *apperr.AppError (400, 401, 403, 429 or 500)
*/
func (gate *Gate) Authenticate(ctx context.Context, source CredentialSource, requiredLevel int, methods ...Method) (context.Context, Principal, error) {
	logger := ctxutil.GetLogger(ctx)

	if len(methods) == 0 {
		methods = DefaultMethods
	}

	method, ok := selectMethod(source, methods)
	if !ok {
		metrics.RecordAuthAttempt("none", metrics.OutcomeBadRequest)
		return ctx, Principal{}, apperr.BadRequest(MessageCredentialsRequired)
	}

	logger.DebugContext(ctx, "auth_method_selected", slog.String("method", string(method)))

	principal, err := gate.verify(ctx, source, method)
	if err != nil {
		appError := apperr.As(apperr.Ensure(err))
		outcome := metrics.OutcomeError
		if appError.HTTPStatus == http.StatusTooManyRequests {
			outcome = metrics.OutcomeThrottled
		}
		metrics.RecordAuthAttempt(string(method), outcome)
		return ctx, Principal{}, appError
	}

	if !principal.Present() {
		metrics.RecordAuthAttempt(string(method), metrics.OutcomeDenied)
		logger.InfoContext(ctx, "auth_verification_failed", slog.String("method", string(method)))
		return ctx, Principal{}, apperr.Unauthorized(MessageInvalidCredentials)
	}

	if requiredLevel > principal.Level() {
		metrics.RecordAuthAttempt(string(method), metrics.OutcomeForbidden)
		logger.InfoContext(ctx, "auth_level_insufficient",
			slog.Int64("user_id", principal.ID()),
			slog.Int("level", principal.Level()),
			slog.Int("required_level", requiredLevel),
		)
		return ctx, Principal{}, apperr.Forbidden(MessageInsufficientLevel)
	}

	metrics.RecordAuthAttempt(string(method), metrics.OutcomeSuccess)
	logger.DebugContext(ctx, "auth_succeeded",
		slog.Int64("user_id", principal.ID()),
		slog.String("method", string(method)),
		slog.Bool("privileged", principal.Privileged()),
	)

	return WithIdentity(ctx, Identity{Principal: principal, Method: method}), principal, nil
}

// # Helpers

// selectMethod picks the first applicable method, token before password.
func selectMethod(source CredentialSource, methods []Method) (Method, bool) {
	if allows(methods, MethodToken) {
		if _, ok := source.Token(); ok {
			return MethodToken, true
		}
	}

	if allows(methods, MethodPassword) {
		_, hasUsername := source.Value(FieldUsername)
		_, hasPassword := source.Value(FieldPassword)
		if hasUsername && hasPassword {
			return MethodPassword, true
		}
	}

	return "", false
}

func allows(methods []Method, method Method) bool {
	for _, allowed := range methods {
		if allowed == method {
			return true
		}
	}
	return false
}

// verify runs the lookup for method under the gate deadline.
func (gate *Gate) verify(ctx context.Context, source CredentialSource, method Method) (Principal, error) {
	if gate.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gate.timeout)
		defer cancel()
	}

	if method == MethodToken {
		token, _ := source.Token()
		return gate.finder.FindByToken(ctx, token)
	}

	username, _ := source.Value(FieldUsername)
	password, _ := source.Value(FieldPassword)

	if err := gate.checkThrottle(ctx, username); err != nil {
		return Principal{}, err
	}

	principal, err := gate.finder.FindByCredentials(ctx, username, &password)
	if err != nil {
		return Principal{}, err
	}

	gate.recordOutcome(ctx, username, principal.Present())
	return principal, nil
}

// checkThrottle rejects password attempts over the failure limit.
// Throttle backend errors are logged and the attempt proceeds.
func (gate *Gate) checkThrottle(ctx context.Context, username string) error {
	if gate.throttle == nil {
		return nil
	}

	allowed, retryAfter, err := gate.throttle.Allow(ctx, username)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "auth_throttle_unavailable", slog.Any("error", err))
		return nil
	}
	if !allowed {
		return apperr.RateLimited(int(math.Ceil(retryAfter.Seconds())))
	}
	return nil
}

func (gate *Gate) recordOutcome(ctx context.Context, username string, verified bool) {
	if gate.throttle == nil {
		return
	}

	var err error
	if verified {
		err = gate.throttle.Reset(ctx, username)
	} else {
		err = gate.throttle.Failure(ctx, username)
	}
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "auth_throttle_unavailable", slog.Any("error", err))
	}
}
