// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
	"github.com/gritsos/gritsos-api/internal/platform/config"
	"github.com/gritsos/gritsos-api/internal/platform/database"
)

// ErrPrincipalNotFound is returned by repositories when no principal matches.
// The [Store] turns it into the absent principal.
var ErrPrincipalNotFound = apperr.NotFound("User")

// # Storage Rows

// PrincipalRow is a principal as read from storage.
//
// PasswordHash and Token are nil when the column is NULL or when the query
// that produced the row does not load them.
type PrincipalRow struct {
	ID           int64
	Username     string
	PasswordHash *string
	Token        *string
	Level        int
}

// # Principal Data Access

// Repository defines the data access contract for principals and their tokens.
//
// # Invariant
//
// At most one token row per principal has a non-NULL owner. Every method that
// writes tokens locks the principal row first and runs in one transaction.
type Repository interface {

	/*
		FindByID returns the id, username and level of a principal.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *PrincipalRow: Row without password hash or token
		  - error: ErrPrincipalNotFound or database errors
	*/
	FindByID(context context.Context, id int64) (*PrincipalRow, error)

	/*
		FindByUsername returns a principal with its password hash and live token.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *PrincipalRow: Token is nil when no live token exists
		  - error: ErrPrincipalNotFound or database errors
	*/
	FindByUsername(context context.Context, username string) (*PrincipalRow, error)

	/*
		FindByToken returns the owner of a live token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *PrincipalRow: The owning principal
		  - error: ErrPrincipalNotFound for unknown or revoked tokens
	*/
	FindByToken(context context.Context, token string) (*PrincipalRow, error)

	/*
		Create inserts a principal and its first token in one transaction.

		Parameters:
		  - context: context.Context
		  - row: PrincipalRow (ID is ignored)
		  - token: string

		Returns:
		  - int64: The new principal ID
		  - error: apperr.Conflict on duplicate usernames; nothing is written
	*/
	Create(context context.Context, row PrincipalRow, token string) (int64, error)

	/*
		RotateToken revokes the live token of a principal and stores a new one.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - token: string

		Returns:
		  - error: ErrPrincipalNotFound or database errors; nothing is written on failure
	*/
	RotateToken(context context.Context, id int64, token string) error

	/*
		EnsureToken stores candidate as the live token unless one already exists.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - candidate: string

		Returns:
		  - string: The live token after the call (candidate or the existing one)
		  - error: ErrPrincipalNotFound or database errors
	*/
	EnsureToken(context context.Context, id int64, candidate string) (string, error)
}

// NewRepository returns the [Repository] matching the driver of handle.
func NewRepository(handle *database.Handle) (Repository, error) {
	switch handle.Driver {
	case config.DriverPostgres:
		return NewPostgresRepository(handle.Pool), nil
	case config.DriverSQLite:
		return NewSQLiteRepository(handle.SQL), nil
	default:
		return nil, fmt.Errorf("auth_repository_unsupported_driver: %q", handle.Driver)
	}
}

// # Failure Throttle

// Throttle counts failed password verifications per username.
type Throttle interface {

	/*
		Allow reports whether another password attempt may be made.

		Returns:
		  - bool: false once the failure limit is reached
		  - time.Duration: Remaining lock time when not allowed
		  - error: Backend failures
	*/
	Allow(context context.Context, username string) (bool, time.Duration, error)

	// Failure records a failed verification.
	Failure(context context.Context, username string) error

	// Reset clears the counter after a successful verification.
	Reset(context context.Context, username string) error
}
