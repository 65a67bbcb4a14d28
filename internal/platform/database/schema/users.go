package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table    string
	ID       string
	Username string
	Password string
	Level    string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:    "users",
	ID:       "id",
	Username: "username",
	Password: "password",
	Level:    "level",
}

// Columns returns all standard column names
func (t UsersTable) Columns() []string {
	return []string{t.ID, t.Username, t.Password, t.Level}
}
