// Copyright (c) 2026 Gritsos. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
	"github.com/gritsos/gritsos-api/internal/platform/ctxutil"
	"github.com/gritsos/gritsos-api/internal/users/auth"
)

// # Contracts

// PrincipalStore is the subset of [auth.Store] used by the user endpoints.
type PrincipalStore interface {
	FindByCredentials(ctx context.Context, username string, password *string) (auth.Principal, error)
	Create(ctx context.Context, username string, password *string, level int) (auth.Principal, error)
	Reissue(ctx context.Context, id int64) (auth.Principal, error)
}

// # Service Layer

// Service applies the access rules of the user endpoints on top of the principal store.
type Service struct {
	principals PrincipalStore
}

// NewService constructs a new [Service].
func NewService(principals PrincipalStore) *Service {
	return &Service{principals: principals}
}

/*
Lookup returns the principal a caller asked for.

Description: An empty target, or the caller's own username, returns the
caller. Any other target requires a privileged caller and is loaded by
username without a password, which backfills a missing token.

Parameters:
  - context: context.Context
  - caller: auth.Principal
  - target: string

Returns:
  - auth.Principal: The requested principal
  - error: Forbidden, NotFound or storage errors
*/
func (service *Service) Lookup(context context.Context, caller auth.Principal, target string) (auth.Principal, error) {
	if target == "" || target == caller.Username() {
		return caller, nil
	}

	if !caller.Privileged() {
		return auth.Principal{}, apperr.Forbidden(MessagePrivilegeRequired)
	}

	principal, err := service.principals.FindByCredentials(context, target, nil)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("account_service_lookup_failed: %w", err)
	}
	if !principal.Present() {
		return auth.Principal{}, auth.ErrPrincipalNotFound
	}

	return principal, nil
}

/*
Create registers a level 0 principal on behalf of a privileged caller.

Parameters:
  - context: context.Context
  - caller: auth.Principal
  - username: string
  - password: *string (nil for a token-only principal)

Returns:
  - auth.Principal: The new principal with its token
  - error: Forbidden, BadRequest, Conflict or Internal
*/
func (service *Service) Create(context context.Context, caller auth.Principal, username string, password *string) (auth.Principal, error) {
	if !caller.Privileged() {
		return auth.Principal{}, apperr.Forbidden(MessagePrivilegeRequired)
	}

	principal, err := service.principals.Create(context, username, password, 0)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("account_service_create_failed: %w", err)
	}
	if !principal.Present() {
		return auth.Principal{}, apperr.Internal(fmt.Errorf("account_service_create_failed: no principal returned for %q", username))
	}

	ctxutil.GetLogger(context).InfoContext(context, "account_user_created",
		slog.Int64("created_by", caller.ID()),
		slog.String("username", principal.Username()),
	)

	return principal, nil
}

/*
RotateToken replaces the caller's token. The previous token stops working at once.

Parameters:
  - context: context.Context
  - caller: auth.Principal

Returns:
  - auth.Principal: The caller carrying the new token
  - error: NotFound or storage errors
*/
func (service *Service) RotateToken(context context.Context, caller auth.Principal) (auth.Principal, error) {
	principal, err := service.principals.Reissue(context, caller.ID())
	if err != nil {
		return auth.Principal{}, fmt.Errorf("account_service_rotate_failed: %w", err)
	}
	return principal, nil
}
