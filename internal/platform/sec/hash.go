// Copyright (c) 2026 Gritsos. All rights reserved.

// Package sec provides the cryptographic primitives used by the identity layer.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, token
// generation) from the domain logic. Nothing here touches storage.
package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredential is returned when a credential cannot be hashed,
// currently only for the empty password.
var ErrInvalidCredential = errors.New("sec: invalid credential")

// Hasher applies salted, adaptive one-way hashing to passwords.
//
// The zero value hashes with [bcrypt.DefaultCost].
type Hasher struct {
	cost int
}

// NewHasher returns a [Hasher] using the given bcrypt cost. Costs outside
// [bcrypt.MinCost, bcrypt.MaxCost] fall back to [bcrypt.DefaultCost].
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

// Cost reports the bcrypt cost factor new hashes are created with.
func (hasher Hasher) Cost() int {
	if hasher.cost == 0 {
		return bcrypt.DefaultCost
	}
	return hasher.cost
}

// Hash hashes a plain-text password using the bcrypt algorithm.
func (hasher Hasher) Hash(plainTextPassword string) (string, error) {
	if plainTextPassword == "" {
		return "", ErrInvalidCredential
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.Cost())
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify compares a plain-text candidate with a stored hash in constant time.
// A malformed stored hash never matches.
func (hasher Hasher) Verify(existingHash, candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(candidate))
	return err == nil
}
