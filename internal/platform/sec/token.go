// Copyright (c) 2026 Gritsos. All rights reserved.

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultTokenLength is the number of characters in a generated bearer token.
const DefaultTokenLength = 48

// GenerateToken returns a bearer token of exactly length characters drawn from
// the standard base64 alphabet. Randomness comes from [crypto/rand].
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("sec: token length must be positive, got %d", length)
	}

	// Every 3 random bytes encode to 4 characters; round up and trim.
	raw := make([]byte, (length*3+3)/4)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}

	return base64.StdEncoding.EncodeToString(raw)[:length], nil
}
