// Package kms opens gocloud.dev/secrets keepers used to protect the token store API key at rest.
package kms

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper is the subset of *secrets.Keeper used by the kiosk.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// Service opens keepers and seals or unseals the store API key.
type Service interface {
	// OpenKeeper opens a keeper for keyURI.
	// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
	OpenKeeper(ctx context.Context, keyURI string) (Keeper, error)

	// EncryptAPIKey returns the base64 ciphertext of plainKey.
	EncryptAPIKey(ctx context.Context, keyURI, plainKey string) (string, error)

	// DecryptAPIKey returns the plain key sealed in a base64 ciphertext.
	DecryptAPIKey(ctx context.Context, keyURI, ciphertext string) (string, error)
}

type kmsService struct{}

// NewService creates a new KMS service instance.
func NewService() Service {
	return &kmsService{}
}

// OpenKeeper opens a secrets.Keeper for the configured KMS provider.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// EncryptAPIKey seals plainKey with the keeper at keyURI.
func (k *kmsService) EncryptAPIKey(ctx context.Context, keyURI, plainKey string) (string, error) {
	keeper, err := k.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = keeper.Close()
	}()

	ciphertext, err := keeper.Encrypt(ctx, []byte(plainKey))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt api key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptAPIKey unseals a base64 ciphertext produced by EncryptAPIKey.
func (k *kmsService) DecryptAPIKey(ctx context.Context, keyURI, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return "", fmt.Errorf("failed to decode api key ciphertext: %w", err)
	}

	keeper, err := k.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt api key: %w", err)
	}
	return string(plaintext), nil
}
