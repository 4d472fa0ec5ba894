package domain

import (
	apperrors "github.com/allisson/qrgate/internal/errors"
)

// Token store errors.
var (
	// ErrTokenNotFound indicates the token was never issued.
	ErrTokenNotFound = apperrors.Wrap(apperrors.ErrNotFound, "token not found")

	// ErrTokenConsumed indicates the token was already invalidated.
	ErrTokenConsumed = apperrors.Wrap(apperrors.ErrConflict, "token already consumed")

	// ErrTokenAlreadyExists indicates a generated value collided with an existing token.
	ErrTokenAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "token already exists")

	// ErrInvalidFormat indicates an unsupported token format.
	ErrInvalidFormat = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid token format")

	// ErrInvalidLength indicates a token length outside the supported range.
	ErrInvalidLength = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid token length")

	// ErrInvalidCount indicates an issue count outside the supported range.
	ErrInvalidCount = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid token count")
)
