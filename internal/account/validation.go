// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package account

import (
	"regexp"
	"unicode/utf8"

	"github.com/samber/oops"
)

// Input constraints for registration and login.
const (
	MinHandleLength     = 4
	MinCredentialLength = 8
	MaxPlanetCodeLength = 5
)

// handleRegex matches handles made of ASCII letters and digits only.
var handleRegex = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Validation rules below are pure and side-effect free. Each returns nil or
// an oops error carrying CodeInvalidParams and a reason naming exactly the
// rule that failed. The engine applies them in a fixed order and stops at the
// first failure, so every rejected call surfaces a single reason.

// RequireFields fails when any of the given values is empty.
func RequireFields(values ...string) error {
	for _, v := range values {
		if v == "" {
			return oops.Code(CodeInvalidParams).Errorf("missing required fields")
		}
	}
	return nil
}

// MinLength fails when value is shorter than min. Lengths are counted in
// characters, not bytes, so multibyte input is measured the same way users
// perceive it.
func MinLength(label, value string, min int) error {
	if utf8.RuneCountInString(value) < min {
		return oops.Code(CodeInvalidParams).
			With("min", min).
			Errorf("%s too short", label)
	}
	return nil
}

// MaxLength fails when value is longer than max, counted in characters.
func MaxLength(label, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return oops.Code(CodeInvalidParams).
			With("max", max).
			Errorf("%s too long", label)
	}
	return nil
}

// AlphanumericOnly fails when value contains any character outside letters
// and digits.
func AlphanumericOnly(label, value string) error {
	if !handleRegex.MatchString(value) {
		return oops.Code(CodeInvalidParams).
			Errorf("%s contains disallowed characters", label)
	}
	return nil
}

// MatchConfirmation fails when the credential and its confirmation differ.
func MatchConfirmation(credential, confirm string) error {
	if credential != confirm {
		return oops.Code(CodeInvalidParams).
			Errorf("credential confirmation mismatch")
	}
	return nil
}
