// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/qrgate/internal/errors"
)

const (
	// MaxTokenLength bounds tokens sent to the store for invalidation.
	MaxTokenLength = 512
	// MaxPayloadBytes is the capacity of a version 40 QR code in numeric mode,
	// the largest payload any QR symbol can carry.
	MaxPayloadBytes = 7089
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Printable rejects control characters. QR payloads arrive as text, and a control
// character almost always means a misread or a keyboard-wedge artifact.
var Printable = validation.NewStringRuleWithError(
	func(s string) bool {
		for _, r := range s {
			if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
				return false
			}
		}
		return true
	},
	validation.NewError("validation_printable", "must not contain control characters"),
)

// TrimmedMaxLength limits the rune count of a string after surrounding
// whitespace is removed, so padding never changes the verdict.
func TrimmedMaxLength(maxRunes int) validation.Rule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			return utf8.RuneCountInString(strings.TrimSpace(s)) <= maxRunes
		},
		validation.NewError("validation_trimmed_length", fmt.Sprintf("must be at most %d characters", maxRunes)),
	)
}

// OneOf validates that a string is one of the allowed values.
func OneOf(allowed ...string) validation.Rule {
	values := make([]interface{}, len(allowed))
	for i, v := range allowed {
		values[i] = v
	}
	return validation.In(values...).Error("must be one of: " + strings.Join(allowed, ", "))
}
