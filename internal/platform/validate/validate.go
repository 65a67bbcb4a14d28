// Copyright (c) 2026 Gritsos. All rights reserved.

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used in the service layer, never in handlers or storage.
// Business logic only operates on data that passed these rules.
package validate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/gritsos/gritsos-api/internal/platform/apperr"
)

// MaxUsernameLength is the longest username accepted at creation.
const MaxUsernameLength = 64

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// NonNegative fails if the value is below zero.
func (v *Validator) NonNegative(field string, value int) *Validator {
	if value < 0 {
		v.add(field, "Must not be negative")
	}
	return v
}

// Username fails unless the value is a usable login name.
//
// # Format
//
// Usernames must be valid UTF-8 already in Unicode NFC form, at most
// [MaxUsernameLength] characters, and free of control characters. Stored
// names are compared byte for byte, so two spellings of the same name
// must not both be accepted.
func (v *Validator) Username(field, value string) *Validator {
	switch {
	case !utf8.ValidString(value):
		v.add(field, "Must be valid UTF-8")
	case !norm.NFC.IsNormalString(value):
		v.add(field, "Must be in Unicode NFC form")
	case strings.IndexFunc(value, unicode.IsControl) >= 0:
		v.add(field, "Must not contain control characters")
	case utf8.RuneCountInString(value) > MaxUsernameLength:
		v.add(field, fmt.Sprintf("Maximum %d characters", MaxUsernameLength))
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method. Call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
