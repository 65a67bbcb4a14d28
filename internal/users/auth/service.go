// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
	"github.com/gritsos/gritsos-api/internal/platform/ctxutil"
	"github.com/gritsos/gritsos-api/internal/platform/metrics"
	"github.com/gritsos/gritsos-api/internal/platform/sec"
	"github.com/gritsos/gritsos-api/internal/platform/validate"
)

// # Contracts & Types

// PasswordHasher hashes and verifies password credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(existingHash, candidate string) bool
}

// Store implements principal lookups and registration.
//
// # Review Process
//
// This type decides whether a credential is accepted. Any change to how
// passwords are verified or privileged is derived must be reviewed.
type Store struct {
	repository Repository
	issuer     *TokenIssuer
	hasher     PasswordHasher
}

// NewStore constructs a new [Store] with necessary dependencies.
func NewStore(repository Repository, issuer *TokenIssuer, hasher PasswordHasher) *Store {
	return &Store{
		repository: repository,
		issuer:     issuer,
		hasher:     hasher,
	}
}

// # Lookups

/*
FindByID loads a principal by its identifier.

Description: Only id, username and level are loaded. The result is never
privileged and calling Token on it panics.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - Principal: The absent principal when no row matches
  - error: Storage errors
*/
func (store *Store) FindByID(context context.Context, id int64) (Principal, error) {
	row, err := store.repository.FindByID(context, id)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return Principal{}, nil
		}
		return Principal{}, err
	}
	return NewPrincipal(*row, false), nil
}

/*
FindByCredentials loads a principal by username, verifying password when given.

Description: This lookup may write. When the principal has no live token one
is issued through [TokenIssuer.Ensure] before returning, so the result always
carries a token.

A nil password skips verification and yields an unprivileged principal. A
non-nil password must match the stored hash; a principal without a stored
hash never matches. A verified password yields a privileged principal.

Parameters:
  - context: context.Context
  - username: string
  - password: *string

Returns:
  - Principal: The absent principal when the user is unknown or the password does not match
  - error: Storage errors
*/
func (store *Store) FindByCredentials(context context.Context, username string, password *string) (Principal, error) {
	row, err := store.repository.FindByUsername(context, username)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return Principal{}, nil
		}
		return Principal{}, err
	}

	privileged := false
	if password != nil {
		if row.PasswordHash == nil || !store.hasher.Verify(*row.PasswordHash, *password) {
			return Principal{}, nil
		}
		privileged = true
	}

	if row.Token == nil {
		token, err := store.issuer.Ensure(context, row.ID)
		if err != nil {
			return Principal{}, fmt.Errorf("auth_store_token_backfill_failed: %w", err)
		}
		row.Token = &token
	}

	return NewPrincipal(*row, privileged), nil
}

/*
FindByToken loads the owner of a live bearer token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - Principal: Never privileged; absent for unknown, revoked or empty tokens
  - error: Storage errors
*/
func (store *Store) FindByToken(context context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, nil
	}

	row, err := store.issuer.LookupOwner(context, token)
	if err != nil {
		return Principal{}, err
	}
	if row == nil {
		return Principal{}, nil
	}

	return NewPrincipal(*row, false), nil
}

// # Registration

/*
Create registers a principal and issues its first token.

Description: A nil password creates a token-only principal. An empty password
is rejected. The principal row and its token are written in one transaction,
so a rejected duplicate leaves no token behind.

Parameters:
  - context: context.Context
  - username: string
  - password: *string
  - level: int

Returns:
  - Principal: The new principal including its token; not privileged
  - error: BadRequest, ValidationError, Conflict (duplicate username) or storage errors
*/
func (store *Store) Create(context context.Context, username string, password *string, level int) (Principal, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		Username(FieldUsername, username).
		NonNegative(FieldLevel, level)
	if err := validator.Err(); err != nil {
		return Principal{}, err
	}

	var passwordHash *string
	if password != nil {
		hashed, err := store.hasher.Hash(*password)
		if err != nil {
			if errors.Is(err, sec.ErrInvalidCredential) {
				return Principal{}, apperr.BadRequest(MessageInvalidPassword)
			}
			return Principal{}, fmt.Errorf("auth_store_hash_failed: %w", err)
		}
		passwordHash = &hashed
	}

	token, err := store.issuer.Generate()
	if err != nil {
		return Principal{}, err
	}

	row := PrincipalRow{Username: username, PasswordHash: passwordHash, Level: level, Token: &token}
	row.ID, err = store.repository.Create(context, row, token)
	if err != nil {
		return Principal{}, err
	}

	metrics.PrincipalsCreatedTotal.Inc()
	metrics.RecordTokenIssued(metrics.ReasonCreate)
	ctxutil.GetLogger(context).InfoContext(context, "auth_principal_created",
		slog.Int64("user_id", row.ID),
		slog.String("username", username),
		slog.Int("level", level),
		slog.Bool("has_password", passwordHash != nil),
	)

	return NewPrincipal(row, false), nil
}

/*
Reissue rotates the token of an existing principal.

Description: Administrative rotation. Also repairs a principal whose token
row was removed out of band.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - Principal: The principal carrying its new token; not privileged
  - error: ErrPrincipalNotFound or storage errors
*/
func (store *Store) Reissue(context context.Context, id int64) (Principal, error) {
	principal, err := store.FindByID(context, id)
	if err != nil {
		return Principal{}, err
	}
	if !principal.Present() {
		return Principal{}, ErrPrincipalNotFound
	}

	token, err := store.issuer.Rotate(context, id)
	if err != nil {
		return Principal{}, err
	}

	return principal.WithToken(token), nil
}
