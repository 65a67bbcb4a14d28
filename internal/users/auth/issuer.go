// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gritsos/gritsos-api/internal/platform/ctxutil"
	"github.com/gritsos/gritsos-api/internal/platform/metrics"
	"github.com/gritsos/gritsos-api/internal/platform/sec"
)

// TokenIssuer generates bearer tokens and writes them through the Repository.
type TokenIssuer struct {
	repository Repository
	length     int
}

// NewTokenIssuer constructs a [TokenIssuer]. A non-positive length uses [sec.DefaultTokenLength].
func NewTokenIssuer(repository Repository, length int) *TokenIssuer {
	if length <= 0 {
		length = sec.DefaultTokenLength
	}
	return &TokenIssuer{repository: repository, length: length}
}

// Generate returns a fresh random token without storing it.
func (issuer *TokenIssuer) Generate() (string, error) {
	token, err := sec.GenerateToken(issuer.length)
	if err != nil {
		return "", fmt.Errorf("token_generation_failed: %w", err)
	}
	return token, nil
}

/*
Rotate replaces the live token of a principal.

Description: The previous token stops authenticating once the transaction
commits. Concurrent rotations for one principal leave exactly one live token.

Parameters:
  - context: context.Context
  - principalID: int64

Returns:
  - string: The new token
  - error: ErrPrincipalNotFound or storage errors
*/
func (issuer *TokenIssuer) Rotate(context context.Context, principalID int64) (string, error) {
	token, err := issuer.Generate()
	if err != nil {
		return "", err
	}

	if err := issuer.repository.RotateToken(context, principalID, token); err != nil {
		return "", err
	}

	metrics.RecordTokenIssued(metrics.ReasonRotate)
	ctxutil.GetLogger(context).InfoContext(context, "auth_token_rotated", slog.Int64("user_id", principalID))

	return token, nil
}

/*
Ensure returns the live token of a principal, issuing one if none exists.

Description: Used by credential lookups that find a principal without a
token. Concurrent calls agree on a single token.

Parameters:
  - context: context.Context
  - principalID: int64

Returns:
  - string: The live token
  - error: ErrPrincipalNotFound or storage errors
*/
func (issuer *TokenIssuer) Ensure(context context.Context, principalID int64) (string, error) {
	candidate, err := issuer.Generate()
	if err != nil {
		return "", err
	}

	token, err := issuer.repository.EnsureToken(context, principalID, candidate)
	if err != nil {
		return "", err
	}

	if token == candidate {
		metrics.RecordTokenIssued(metrics.ReasonBackfill)
		ctxutil.GetLogger(context).InfoContext(context, "auth_token_backfilled", slog.Int64("user_id", principalID))
	}

	return token, nil
}

/*
LookupOwner resolves a token to its owning principal.

Returns:
  - *PrincipalRow: nil when the token is unknown or revoked
  - error: Storage errors
*/
func (issuer *TokenIssuer) LookupOwner(context context.Context, token string) (*PrincipalRow, error) {
	row, err := issuer.repository.FindByToken(context, token)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}
