// Copyright (c) 2026 Gritsos. All rights reserved.

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
	"github.com/gritsos/gritsos-api/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "username", "alice", false},
		{"empty_string", "username", "", true},
		{"whitespace_only", "username", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Username checks the login name rule.
*/
func TestValidator_Username(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"ascii", "alice", true},
		{"with_space", "alice smith", true},
		{"composed_accent", "jos\u00e9", true},
		{"decomposed_accent", "jose\u0301", false},
		{"control_rune", "ali\x00ce", false},
		{"invalid_utf8", "\xff\xfe", false},
		{"too_long", strings.Repeat("a", validate.MaxUsernameLength+1), false},
		{"max_length", strings.Repeat("a", validate.MaxUsernameLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Username("username", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain ensures that multiple validation errors are collected.
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}
	v.Required("username", "").
		NonNegative("level", -1).
		Username("alias", "bad\x00name")

	err := v.Err()
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 3)
	assert.True(t, v.HasErrors())
}
