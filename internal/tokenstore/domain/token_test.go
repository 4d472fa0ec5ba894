package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/qrgate/internal/errors"
)

func TestStoredToken_IsConsumed(t *testing.T) {
	token := &StoredToken{Value: "ABC123", CreatedAt: time.Now()}
	assert.False(t, token.IsConsumed())

	now := time.Now()
	token.ConsumedAt = &now
	assert.True(t, token.IsConsumed())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{input: "alphanumeric", expected: FormatAlphanumeric},
		{input: " Numeric ", expected: FormatNumeric},
		{input: "UUID", expected: FormatUUID},
		{input: "luhn", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			format, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestErrors_Mapping(t *testing.T) {
	assert.ErrorIs(t, ErrTokenNotFound, apperrors.ErrNotFound)
	assert.ErrorIs(t, ErrTokenConsumed, apperrors.ErrConflict)
	assert.ErrorIs(t, ErrTokenAlreadyExists, apperrors.ErrConflict)
	assert.ErrorIs(t, ErrInvalidLength, apperrors.ErrInvalidInput)
	assert.ErrorIs(t, ErrInvalidCount, apperrors.ErrInvalidInput)
	assert.Equal(t, "token already consumed: conflict", ErrTokenConsumed.Error())
}
