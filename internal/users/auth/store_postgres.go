// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gritsos/gritsos-api/internal/platform/dberr"
)

// # PostgreSQL Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
FindByID retrieves the id, username and level of a principal.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *PrincipalRow: Row without password hash or token
  - error: ErrPrincipalNotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*PrincipalRow, error) {
	row := &PrincipalRow{}
	err := repository.pool.QueryRow(context, postgresStatements.findByID, id).Scan(
		&row.ID,
		&row.Username,
		&row.Level,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, dberr.Wrap(err, "postgres_principal_find_by_id_failed")
	}

	return row, nil
}

/*
FindByUsername retrieves a principal joined with its live token.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *PrincipalRow: Token is nil when no live token exists
  - error: ErrPrincipalNotFound or database errors
*/
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*PrincipalRow, error) {
	return repository.scanOne(context, postgresStatements.findByUsername, username, "postgres_principal_find_by_username_failed")
}

/*
FindByToken retrieves the owner of a live token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *PrincipalRow: The owning principal
  - error: ErrPrincipalNotFound for unknown or revoked tokens
*/
func (repository *PostgresRepository) FindByToken(context context.Context, token string) (*PrincipalRow, error) {
	return repository.scanOne(context, postgresStatements.findByToken, token, "postgres_principal_find_by_token_failed")
}

/*
Create inserts a principal and its first token.

Description: Both inserts run in one transaction. A duplicate username fails
the first insert and the deferred rollback leaves no token row behind.

Parameters:
  - context: context.Context
  - row: PrincipalRow
  - token: string

Returns:
  - int64: The new principal ID
  - error: apperr.Conflict on duplicate usernames
*/
func (repository *PostgresRepository) Create(context context.Context, row PrincipalRow, token string) (int64, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return 0, dberr.Wrap(err, "postgres_principal_create_begin_failed")
	}
	defer transaction.Rollback(context)

	var id int64
	err = transaction.QueryRow(context, postgresStatements.insertUser, row.Username, row.PasswordHash, row.Level).Scan(&id)
	if err != nil {
		return 0, dberr.Wrap(err, "postgres_principal_create_failed")
	}

	if _, err := transaction.Exec(context, postgresStatements.insertToken, token, id); err != nil {
		return 0, dberr.Wrap(err, "postgres_principal_create_token_failed")
	}

	if err := transaction.Commit(context); err != nil {
		return 0, dberr.Wrap(err, "postgres_principal_create_commit_failed")
	}

	return id, nil
}

/*
RotateToken revokes the live token of a principal and stores a new one.

Description: The principal row is locked with SELECT ... FOR UPDATE so
concurrent rotations for the same principal run one after another.

Parameters:
  - context: context.Context
  - id: int64
  - token: string

Returns:
  - error: ErrPrincipalNotFound or database errors
*/
func (repository *PostgresRepository) RotateToken(context context.Context, id int64, token string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "postgres_token_rotate_begin_failed")
	}
	defer transaction.Rollback(context)

	if err := lockPostgresPrincipal(context, transaction, id); err != nil {
		return err
	}

	if _, err := transaction.Exec(context, postgresStatements.revokeTokens, id); err != nil {
		return dberr.Wrap(err, "postgres_token_revoke_failed")
	}

	if _, err := transaction.Exec(context, postgresStatements.insertToken, token, id); err != nil {
		return dberr.Wrap(err, "postgres_token_insert_failed")
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "postgres_token_rotate_commit_failed")
	}

	return nil
}

/*
EnsureToken stores candidate as the live token unless one already exists.

Parameters:
  - context: context.Context
  - id: int64
  - candidate: string

Returns:
  - string: The live token after the call
  - error: ErrPrincipalNotFound or database errors
*/
func (repository *PostgresRepository) EnsureToken(context context.Context, id int64, candidate string) (string, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return "", dberr.Wrap(err, "postgres_token_ensure_begin_failed")
	}
	defer transaction.Rollback(context)

	if err := lockPostgresPrincipal(context, transaction, id); err != nil {
		return "", err
	}

	var live string
	err = transaction.QueryRow(context, postgresStatements.liveToken, id).Scan(&live)
	switch {
	case err == nil:
		return live, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return "", dberr.Wrap(err, "postgres_token_lookup_failed")
	}

	if _, err := transaction.Exec(context, postgresStatements.insertToken, candidate, id); err != nil {
		return "", dberr.Wrap(err, "postgres_token_insert_failed")
	}

	if err := transaction.Commit(context); err != nil {
		return "", dberr.Wrap(err, "postgres_token_ensure_commit_failed")
	}

	return candidate, nil
}

// # Helpers

func (repository *PostgresRepository) scanOne(context context.Context, query string, argument any, action string) (*PrincipalRow, error) {
	row := &PrincipalRow{}
	err := repository.pool.QueryRow(context, query, argument).Scan(
		&row.ID,
		&row.Username,
		&row.PasswordHash,
		&row.Level,
		&row.Token,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, dberr.Wrap(err, action)
	}

	return row, nil
}

// lockPostgresPrincipal takes the row lock that serializes token writes.
func lockPostgresPrincipal(context context.Context, transaction pgx.Tx, id int64) error {
	var locked int64
	err := transaction.QueryRow(context, postgresStatements.lockUser, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPrincipalNotFound
		}
		return dberr.Wrap(err, "postgres_principal_lock_failed")
	}
	return nil
}
