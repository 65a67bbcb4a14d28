// Copyright (c) 2026 Gritsos. All rights reserved.

package auth

// # Authentication Methods

// Method names a way of proving identity.
type Method string

const (
	// MethodToken authenticates with the live bearer token.
	MethodToken Method = "token"

	// MethodPassword authenticates with username and password.
	MethodPassword Method = "password"
)

// # Field Identifiers

// Request parameter names used by credential extraction and the user endpoints.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldUser     = "user"
	FieldLevel    = "level"
)

// # Messages

const (
	// MessageCredentialsRequired is returned when no allowed method has credentials.
	MessageCredentialsRequired = "A token or password is required for authentication"

	// MessageInvalidCredentials is returned when verification fails.
	MessageInvalidCredentials = "Invalid credentials"

	// MessageInsufficientLevel is returned when the principal's level is too low.
	MessageInsufficientLevel = "Insufficient privilege level"

	// MessageInvalidPassword is returned when a principal is created with an empty password.
	MessageInvalidPassword = "InvalidCredential: password must not be empty"
)
