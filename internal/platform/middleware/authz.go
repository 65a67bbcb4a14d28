// Copyright (c) 2026 Gritsos. All rights reserved.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gritsos/gritsos-api/internal/platform/ctxutil"
	"github.com/gritsos/gritsos-api/internal/platform/respond"
	"github.com/gritsos/gritsos-api/internal/users/auth"
)

// Authenticator verifies request credentials against a privilege level.
//
// [*auth.Gate] implements it; tests substitute their own.
type Authenticator interface {
	Authenticate(ctx context.Context, source auth.CredentialSource, requiredLevel int, methods ...auth.Method) (context.Context, auth.Principal, error)
}

// Authenticate guards a route with the authentication gate.
//
// # Flow
//  1. Read credentials from the Token header and request parameters.
//  2. Verify them with one of methods ([auth.DefaultMethods] when empty).
//  3. Reject with 400, 401, 403 or 429 via [respond.Error].
//  4. On success, attach the [auth.Identity] and enrich the request logger.
//
// # Parameters
//   - authenticator: The gate verifying credentials.
//   - requiredLevel: Minimum principal level.
//   - methods: Allowed authentication methods.
func Authenticate(authenticator Authenticator, requiredLevel int, methods ...auth.Method) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx, principal, err := authenticator.Authenticate(request.Context(), auth.RequestCredentials(request), requiredLevel, methods...)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			ctx = ctxutil.EnrichLogger(ctx, slog.Int64("user_id", principal.ID()))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
