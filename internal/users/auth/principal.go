// Copyright (c) 2026 Gritsos. All rights reserved.

/*
Package auth implements principal authentication for the Gritsos API.

A principal is a registered user holding an optional password and at most one
live bearer token. Requests authenticate with either credential and are then
checked against a numeric privilege level.

Architecture:

  - Principal: Immutable value describing who made the request.
  - Store: Credential lookups and registration on top of a [Repository].
  - TokenIssuer: Token generation, rotation and lazy backfill.
  - Gate: Method selection, verification and the level check.

The zero [Principal] is the absent principal. Reading any attribute of it is a
programming error and panics.
*/
package auth

import (
	"encoding/json"
	"fmt"
)

// # Domain Entities

// Principal is an authenticated subject, or the absent principal.
//
// # Privileged
//
// Privileged is not stored. It is true only when the value was produced by a
// lookup that verified a password, and it is fixed at construction.
type Principal struct {
	present     bool
	id          int64
	username    string
	token       string
	tokenLoaded bool
	level       int
	privileged  bool
}

// NewPrincipal builds a present principal from a storage row.
//
// The token is considered loaded when row.Token is non-nil.
func NewPrincipal(row PrincipalRow, privileged bool) Principal {
	principal := Principal{
		present:    true,
		id:         row.ID,
		username:   row.Username,
		level:      row.Level,
		privileged: privileged,
	}
	if row.Token != nil {
		principal.token = *row.Token
		principal.tokenLoaded = true
	}
	return principal
}

// Present reports whether p is a real principal.
func (p Principal) Present() bool {
	return p.present
}

// ID returns the principal's storage identifier.
func (p Principal) ID() int64 {
	p.mustBePresent("ID")
	return p.id
}

// Username returns the principal's unique login name.
func (p Principal) Username() string {
	p.mustBePresent("Username")
	return p.username
}

// Level returns the principal's privilege level.
func (p Principal) Level() int {
	p.mustBePresent("Level")
	return p.level
}

// Privileged reports whether the principal was produced by a verified password lookup.
func (p Principal) Privileged() bool {
	p.mustBePresent("Privileged")
	return p.privileged
}

// Token returns the live bearer token.
// It panics if the lookup that built p did not load the token.
func (p Principal) Token() string {
	p.mustBePresent("Token")
	if !p.tokenLoaded {
		panic("auth: Token called on a principal loaded without its token")
	}
	return p.token
}

// HasToken reports whether the token was loaded.
func (p Principal) HasToken() bool {
	return p.present && p.tokenLoaded
}

// WithToken returns a copy of p carrying token.
func (p Principal) WithToken(token string) Principal {
	p.mustBePresent("WithToken")
	p.token = token
	p.tokenLoaded = true
	return p
}

// Equal reports whether both values denote the same stored user.
// Two absent principals are equal.
func (p Principal) Equal(other Principal) bool {
	if !p.present || !other.present {
		return p.present == other.present
	}
	return p.username == other.username
}

// String implements fmt.Stringer without exposing the token.
func (p Principal) String() string {
	if !p.present {
		return "Principal(absent)"
	}
	return fmt.Sprintf("Principal(%s, level=%d, privileged=%t)", p.username, p.level, p.privileged)
}

// principalJSON is the wire form of a principal.
type principalJSON struct {
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

// MarshalJSON exposes only the username and token. The absent principal encodes as null.
func (p Principal) MarshalJSON() ([]byte, error) {
	if !p.present {
		return []byte("null"), nil
	}
	return json.Marshal(principalJSON{Username: p.username, Token: p.token})
}

func (p Principal) mustBePresent(attribute string) {
	if !p.present {
		panic("auth: " + attribute + " called on the absent principal")
	}
}
