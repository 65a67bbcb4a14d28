// Copyright (c) 2026 Gritsos. All rights reserved.

// Package pointer provides generic helpers for optional values.
//
// Optional request fields such as passwords are modelled as *string, where
// nil means "not sent" and a pointer to "" means "sent empty".
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}
