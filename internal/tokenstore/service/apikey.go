package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/qrgate/internal/errors"
)

// APIKeyHasher hashes and verifies the store API key with Argon2id.
type APIKeyHasher interface {
	Generate() (plainKey, hashedKey string, err error)
	Hash(plainKey string) (string, error)
	Compare(plainKey, hashedKey string) bool
}

type apiKeyHasher struct {
	hasher *pwdhash.PasswordHasher
}

// NewAPIKeyHasher creates an APIKeyHasher using the Moderate policy.
func NewAPIKeyHasher() APIKeyHasher {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// Only reachable with an invalid policy.
		panic(err)
	}
	return &apiKeyHasher{hasher: hasher}
}

// Generate creates a random 32-byte key and its hash.
func (s *apiKeyHasher) Generate() (string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate api key")
	}

	plainKey := base64.RawURLEncoding.EncodeToString(randomBytes)
	hashedKey, err := s.Hash(plainKey)
	if err != nil {
		return "", "", err
	}
	return plainKey, hashedKey, nil
}

// Hash hashes a plain key.
func (s *apiKeyHasher) Hash(plainKey string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainKey))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash api key")
	}
	return hashed, nil
}

// Compare verifies a plain key against its hash in constant time.
func (s *apiKeyHasher) Compare(plainKey, hashedKey string) bool {
	ok, err := s.hasher.Verify([]byte(plainKey), hashedKey)
	if err != nil {
		return false
	}
	return ok
}
