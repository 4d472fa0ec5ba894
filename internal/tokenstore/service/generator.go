// Package service provides token value generators and API key hashing for the
// reference token store.
package service

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/allisson/qrgate/internal/tokenstore/domain"
)

// Generated values skip look-alike characters (0/O, 1/I/l) since tokens are
// sometimes typed in by hand when a code will not scan.
const (
	alphanumericChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	numericChars      = "0123456789"
)

// TokenGenerator produces random token values.
type TokenGenerator interface {
	Generate(length int) (string, error)
}

// NewTokenGenerator returns the generator for format.
func NewTokenGenerator(format domain.Format) (TokenGenerator, error) {
	switch format {
	case domain.FormatAlphanumeric:
		return charsetGenerator(alphanumericChars), nil
	case domain.FormatNumeric:
		return charsetGenerator(numericChars), nil
	case domain.FormatUUID:
		return uuidGenerator{}, nil
	default:
		return nil, domain.ErrInvalidFormat
	}
}

type charsetGenerator string

// Generate draws length characters uniformly from the charset using crypto/rand.
func (g charsetGenerator) Generate(length int) (string, error) {
	if length < domain.MinTokenLength || length > domain.MaxTokenLength {
		return "", domain.ErrInvalidLength
	}

	size := big.NewInt(int64(len(g)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		out[i] = g[n.Int64()]
	}
	return string(out), nil
}

type uuidGenerator struct{}

// Generate returns a UUIDv4; length is ignored.
func (uuidGenerator) Generate(int) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate uuid: %w", err)
	}
	return id.String(), nil
}
