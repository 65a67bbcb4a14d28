package schema

// TokensTable represents the 'tokens' table
type TokensTable struct {
	Table     string
	ID        string
	Token     string
	UserID    string
	CreatedAt string
}

// Tokens is the schema definition for tokens.
//
// A row whose user_id is NULL is a revoked token kept for history.
var Tokens = TokensTable{
	Table:     "tokens",
	ID:        "id",
	Token:     "token",
	UserID:    "user_id",
	CreatedAt: "created_at",
}

// Columns returns all standard column names
func (t TokensTable) Columns() []string {
	return []string{t.ID, t.Token, t.UserID, t.CreatedAt}
}
