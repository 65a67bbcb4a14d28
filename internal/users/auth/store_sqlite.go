// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gritsos/gritsos-api/internal/platform/dberr"
)

// # SQLite Repository

// SQLiteRepository implements the Repository interface on database/sql with
// the modernc.org/sqlite driver.
//
// Every statement inside a transaction goes through the transaction handle.
// The platform handle has a single connection, so using db there would block.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite implementation of the Repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// FindByID retrieves the id, username and level of a principal.
func (repository *SQLiteRepository) FindByID(context context.Context, id int64) (*PrincipalRow, error) {
	row := &PrincipalRow{}
	err := repository.db.QueryRowContext(context, sqliteStatements.findByID, id).Scan(
		&row.ID,
		&row.Username,
		&row.Level,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, dberr.Wrap(err, "sqlite_principal_find_by_id_failed")
	}

	return row, nil
}

// FindByUsername retrieves a principal joined with its live token.
func (repository *SQLiteRepository) FindByUsername(context context.Context, username string) (*PrincipalRow, error) {
	return repository.scanOne(context, sqliteStatements.findByUsername, username, "sqlite_principal_find_by_username_failed")
}

// FindByToken retrieves the owner of a live token.
func (repository *SQLiteRepository) FindByToken(context context.Context, token string) (*PrincipalRow, error) {
	return repository.scanOne(context, sqliteStatements.findByToken, token, "sqlite_principal_find_by_token_failed")
}

// Create inserts a principal and its first token in one transaction.
func (repository *SQLiteRepository) Create(context context.Context, row PrincipalRow, token string) (int64, error) {
	transaction, err := repository.db.BeginTx(context, nil)
	if err != nil {
		return 0, dberr.Wrap(err, "sqlite_principal_create_begin_failed")
	}
	defer transaction.Rollback()

	var id int64
	err = transaction.QueryRowContext(context, sqliteStatements.insertUser, row.Username, row.PasswordHash, row.Level).Scan(&id)
	if err != nil {
		return 0, dberr.Wrap(err, "sqlite_principal_create_failed")
	}

	if _, err := transaction.ExecContext(context, sqliteStatements.insertToken, token, id); err != nil {
		return 0, dberr.Wrap(err, "sqlite_principal_create_token_failed")
	}

	if err := transaction.Commit(); err != nil {
		return 0, dberr.Wrap(err, "sqlite_principal_create_commit_failed")
	}

	return id, nil
}

// RotateToken revokes the live token of a principal and stores a new one.
func (repository *SQLiteRepository) RotateToken(context context.Context, id int64, token string) error {
	transaction, err := repository.db.BeginTx(context, nil)
	if err != nil {
		return dberr.Wrap(err, "sqlite_token_rotate_begin_failed")
	}
	defer transaction.Rollback()

	if err := lockSQLitePrincipal(context, transaction, id); err != nil {
		return err
	}

	if _, err := transaction.ExecContext(context, sqliteStatements.revokeTokens, id); err != nil {
		return dberr.Wrap(err, "sqlite_token_revoke_failed")
	}

	if _, err := transaction.ExecContext(context, sqliteStatements.insertToken, token, id); err != nil {
		return dberr.Wrap(err, "sqlite_token_insert_failed")
	}

	if err := transaction.Commit(); err != nil {
		return dberr.Wrap(err, "sqlite_token_rotate_commit_failed")
	}

	return nil
}

// EnsureToken stores candidate as the live token unless one already exists.
func (repository *SQLiteRepository) EnsureToken(context context.Context, id int64, candidate string) (string, error) {
	transaction, err := repository.db.BeginTx(context, nil)
	if err != nil {
		return "", dberr.Wrap(err, "sqlite_token_ensure_begin_failed")
	}
	defer transaction.Rollback()

	if err := lockSQLitePrincipal(context, transaction, id); err != nil {
		return "", err
	}

	var live string
	err = transaction.QueryRowContext(context, sqliteStatements.liveToken, id).Scan(&live)
	switch {
	case err == nil:
		return live, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", dberr.Wrap(err, "sqlite_token_lookup_failed")
	}

	if _, err := transaction.ExecContext(context, sqliteStatements.insertToken, candidate, id); err != nil {
		return "", dberr.Wrap(err, "sqlite_token_insert_failed")
	}

	if err := transaction.Commit(); err != nil {
		return "", dberr.Wrap(err, "sqlite_token_ensure_commit_failed")
	}

	return candidate, nil
}

// # Helpers

func (repository *SQLiteRepository) scanOne(context context.Context, query string, argument any, action string) (*PrincipalRow, error) {
	row := &PrincipalRow{}
	var passwordHash, token sql.NullString

	err := repository.db.QueryRowContext(context, query, argument).Scan(
		&row.ID,
		&row.Username,
		&passwordHash,
		&row.Level,
		&token,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, dberr.Wrap(err, action)
	}

	if passwordHash.Valid {
		row.PasswordHash = &passwordHash.String
	}
	if token.Valid {
		row.Token = &token.String
	}

	return row, nil
}

// lockSQLitePrincipal takes the write lock and checks that the principal exists.
func lockSQLitePrincipal(context context.Context, transaction *sql.Tx, id int64) error {
	var locked int64
	err := transaction.QueryRowContext(context, sqliteStatements.lockUser, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPrincipalNotFound
		}
		return dberr.Wrap(err, "sqlite_principal_lock_failed")
	}
	return nil
}
