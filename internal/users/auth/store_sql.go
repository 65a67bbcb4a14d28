// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

import (
	"fmt"

	"github.com/gritsos/gritsos-api/internal/platform/database/schema"
)

// statements holds the SQL shared by the PostgreSQL and SQLite repositories.
// Only placeholders and the row lock differ between the two dialects.
type statements struct {
	findByID       string
	findByUsername string
	findByToken    string
	insertUser     string
	insertToken    string
	revokeTokens   string
	liveToken      string
	lockUser       string
}

var (
	users  = schema.Users
	tokens = schema.Tokens
)

// postgresStatements uses $n placeholders and SELECT ... FOR UPDATE.
var postgresStatements = newStatements(
	func(n int) string { return fmt.Sprintf("$%d", n) },
	fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		users.ID, users.Table, users.ID),
)

// sqliteStatements uses ? placeholders. SQLite has no row locks; a no-op
// UPDATE takes the database write lock for the rest of the transaction.
var sqliteStatements = newStatements(
	func(int) string { return "?" },
	fmt.Sprintf(`UPDATE %s SET %s = %s WHERE %s = ? RETURNING %s`,
		users.Table, users.Level, users.Level, users.ID, users.ID),
)

func newStatements(placeholder func(int) string, lockUser string) statements {
	return statements{
		findByID: fmt.Sprintf(`
			SELECT %s, %s, %s
			FROM %s
			WHERE %s = %s`,
			users.ID, users.Username, users.Level,
			users.Table,
			users.ID, placeholder(1),
		),

		findByUsername: fmt.Sprintf(`
			SELECT u.%s, u.%s, u.%s, u.%s, t.%s
			FROM %s u
			LEFT JOIN %s t ON t.%s = u.%s
			WHERE u.%s = %s`,
			users.ID, users.Username, users.Password, users.Level, tokens.Token,
			users.Table,
			tokens.Table, tokens.UserID, users.ID,
			users.Username, placeholder(1),
		),

		findByToken: fmt.Sprintf(`
			SELECT u.%s, u.%s, u.%s, u.%s, t.%s
			FROM %s t
			INNER JOIN %s u ON u.%s = t.%s
			WHERE t.%s = %s`,
			users.ID, users.Username, users.Password, users.Level, tokens.Token,
			tokens.Table,
			users.Table, users.ID, tokens.UserID,
			tokens.Token, placeholder(1),
		),

		insertUser: fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s)
			VALUES (%s, %s, %s)
			RETURNING %s`,
			users.Table, users.Username, users.Password, users.Level,
			placeholder(1), placeholder(2), placeholder(3),
			users.ID,
		),

		insertToken: fmt.Sprintf(`
			INSERT INTO %s (%s, %s)
			VALUES (%s, %s)`,
			tokens.Table, tokens.Token, tokens.UserID,
			placeholder(1), placeholder(2),
		),

		revokeTokens: fmt.Sprintf(`
			UPDATE %s SET %s = NULL
			WHERE %s = %s`,
			tokens.Table, tokens.UserID,
			tokens.UserID, placeholder(1),
		),

		liveToken: fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE %s = %s`,
			tokens.Token, tokens.Table,
			tokens.UserID, placeholder(1),
		),

		lockUser: lockUser,
	}
}
