package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/qrgate/internal/kms"
	"github.com/allisson/qrgate/internal/tokenstore/service"
)

// RunCreateAPIKey generates a token store API key and its argon2id hash.
// When keyURI is set the plain key is also encrypted with that KMS keeper so
// kiosks can be configured with TOKEN_STORE_API_KEY_CIPHERTEXT.
func RunCreateAPIKey(
	ctx context.Context,
	hasher service.APIKeyHasher,
	kmsService kms.Service,
	logger *slog.Logger,
	w io.Writer,
	keyURI string,
	output string,
) error {
	if err := validateOutput(output); err != nil {
		return err
	}

	plainKey, hashedKey, err := hasher.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate api key: %w", err)
	}

	var ciphertext string
	if keyURI != "" {
		ciphertext, err = kmsService.EncryptAPIKey(ctx, keyURI, plainKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt api key: %w", err)
		}
	}

	logger.Info("api key created", slog.Bool("encrypted", ciphertext != ""))

	if output == OutputJSON {
		result := map[string]any{
			"api_key":      plainKey,
			"api_key_hash": hashedKey,
		}
		if ciphertext != "" {
			result["api_key_ciphertext"] = ciphertext
		}
		return writeJSON(w, result)
	}

	_, _ = fmt.Fprintln(w, "# Token store (STORE_API_KEY_HASH)")
	_, _ = fmt.Fprintf(w, "STORE_API_KEY_HASH=%q\n\n", hashedKey)
	_, _ = fmt.Fprintln(w, "# Kiosk")
	if ciphertext != "" {
		_, _ = fmt.Fprintf(w, "KMS_KEY_URI=%q\n", keyURI)
		_, err = fmt.Fprintf(w, "TOKEN_STORE_API_KEY_CIPHERTEXT=%q\n", ciphertext)
		return err
	}
	_, err = fmt.Fprintf(w, "TOKEN_STORE_API_KEY=%q\n", plainKey)
	return err
}
