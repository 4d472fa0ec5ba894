// Package errors defines the error classes shared by every layer. Domain
// errors wrap one of the sentinels so handlers can map them to a status
// without knowing the domain.
package errors

import (
	"errors"
	"fmt"
)

// Error classes.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable marks a collaborator that cannot be reached: the remote
	// token store, the database or the decode device.
	ErrUnavailable = errors.New("unavailable")
)

var classes = []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrUnauthorized, ErrUnavailable}

// Wrap prefixes err with message, keeping it matchable. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Class returns the sentinel err belongs to, or nil for unclassified errors.
func Class(err error) error {
	if err == nil {
		return nil
	}
	for _, class := range classes {
		if errors.Is(err, class) {
			return class
		}
	}
	return nil
}
