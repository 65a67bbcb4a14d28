// Copyright (c) 2026 Gritsos. All rights reserved.

/*
Package account provides the user endpoints built on the authentication gate.

Routes:

  - GET /user: the caller, or another principal for privileged callers.
  - POST /user: create a token-only or password principal (privileged, level 1).
  - POST /user/token: rotate the caller's own token.

Every route is guarded by [middleware.Authenticate]; the handlers read the
authenticated principal from the request context.
*/
package account

// # Field Identifiers

// FieldUserPassword carries the optional password of a principal created with POST /user.
// The plain password field belongs to the caller's own credentials.
const FieldUserPassword = "user_password"

// # Messages

const (
	// MessagePrivilegeRequired is returned when an operation needs a password-verified caller.
	MessagePrivilegeRequired = "Password authentication is required for this operation"

	// MessageUsernameRequired is returned when POST /user names no principal.
	MessageUsernameRequired = "username is required"
)
