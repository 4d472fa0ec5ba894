// Package domain defines the reference token store's persisted model.
package domain

import (
	"strings"
	"time"
)

// StoredToken is a single-use admission token kept by the store.
type StoredToken struct {
	Value      string
	CreatedAt  time.Time
	ConsumedAt *time.Time
}

// IsConsumed reports whether the token has been invalidated.
func (t *StoredToken) IsConsumed() bool {
	return t.ConsumedAt != nil
}

// Format selects how issued token values are generated.
type Format string

const (
	FormatAlphanumeric Format = "alphanumeric"
	FormatNumeric      Format = "numeric"
	FormatUUID         Format = "uuid"
)

// Formats lists every supported format.
var Formats = []Format{FormatAlphanumeric, FormatNumeric, FormatUUID}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", ErrInvalidFormat
}

// Issue limits.
const (
	DefaultTokenLength = 12
	MinTokenLength     = 6
	MaxTokenLength     = 64
	MaxIssueCount      = 1000
)

// IssueInput describes a batch of tokens to create.
type IssueInput struct {
	Count  int
	Format Format
	// Length is ignored for FormatUUID.
	Length int
}
