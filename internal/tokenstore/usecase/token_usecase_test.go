package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/qrgate/internal/errors"
	"github.com/allisson/qrgate/internal/tokenstore/domain"
	"github.com/allisson/qrgate/internal/tokenstore/usecase/mocks"
)

func TestTokenUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := &mocks.MockTokenRepository{}
		repo.On("ListValid", ctx).Return([]string{"ABC123", "XYZ789"}, nil).Once()

		values, err := NewTokenUseCase(&mocks.MockTxManager{}, repo).List(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"ABC123", "XYZ789"}, values)
		repo.AssertExpectations(t)
	})

	t.Run("Error_RepositoryFails", func(t *testing.T) {
		repo := &mocks.MockTokenRepository{}
		repo.On("ListValid", ctx).Return(nil, errors.New("db down")).Once()

		values, err := NewTokenUseCase(&mocks.MockTxManager{}, repo).List(ctx)

		assert.Error(t, err)
		assert.Nil(t, values)
	})
}

func TestTokenUseCase_Invalidate(t *testing.T) {
	ctx := context.Background()
	consumedAt := time.Now().UTC()

	tests := []struct {
		name        string
		value       string
		setup       func(repo *mocks.MockTokenRepository)
		expectedErr error
	}{
		{
			name:  "Success_ConsumesToken",
			value: "  ABC123 ",
			setup: func(repo *mocks.MockTokenRepository) {
				repo.On("Consume", ctx, "ABC123", mock.AnythingOfType("time.Time")).Return(true, nil).Once()
			},
		},
		{
			name:  "Error_NotFound",
			value: "NOPE",
			setup: func(repo *mocks.MockTokenRepository) {
				repo.On("Consume", ctx, "NOPE", mock.AnythingOfType("time.Time")).Return(false, nil).Once()
				repo.On("Get", ctx, "NOPE").Return(nil, domain.ErrTokenNotFound).Once()
			},
			expectedErr: domain.ErrTokenNotFound,
		},
		{
			name:  "Error_AlreadyConsumed",
			value: "ABC123",
			setup: func(repo *mocks.MockTokenRepository) {
				repo.On("Consume", ctx, "ABC123", mock.AnythingOfType("time.Time")).Return(false, nil).Once()
				repo.On("Get", ctx, "ABC123").
					Return(&domain.StoredToken{Value: "ABC123", ConsumedAt: &consumedAt}, nil).
					Once()
			},
			expectedErr: domain.ErrTokenConsumed,
		},
		{
			name:  "Error_ConsumeFails",
			value: "ABC123",
			setup: func(repo *mocks.MockTokenRepository) {
				repo.On("Consume", ctx, "ABC123", mock.AnythingOfType("time.Time")).
					Return(false, errors.New("db down")).
					Once()
			},
			expectedErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockTokenRepository{}
			tt.setup(repo)

			err := NewTokenUseCase(&mocks.MockTxManager{}, repo).Invalidate(ctx, tt.value)

			if tt.expectedErr == nil {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedErr.Error(), err.Error())
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestTokenUseCase_Invalidate_StatusMapping(t *testing.T) {
	assert.ErrorIs(t, domain.ErrTokenNotFound, apperrors.ErrNotFound)
	assert.ErrorIs(t, domain.ErrTokenConsumed, apperrors.ErrConflict)
}

func TestTokenUseCase_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_DefaultLength", func(t *testing.T) {
		txManager := &mocks.MockTxManager{}
		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		repo := &mocks.MockTokenRepository{}
		repo.On("Create", ctx, mock.AnythingOfType("*domain.StoredToken")).Return(nil).Times(3)

		tokens, err := NewTokenUseCase(txManager, repo).Issue(ctx, domain.IssueInput{
			Count:  3,
			Format: domain.FormatAlphanumeric,
		})

		require.NoError(t, err)
		require.Len(t, tokens, 3)
		for _, token := range tokens {
			assert.Len(t, token.Value, domain.DefaultTokenLength)
			assert.False(t, token.CreatedAt.IsZero())
			assert.False(t, token.IsConsumed())
		}
		txManager.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Success_RetriesCollision", func(t *testing.T) {
		txManager := &mocks.MockTxManager{}
		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		repo := &mocks.MockTokenRepository{}
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrTokenAlreadyExists).Once()
		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		tokens, err := NewTokenUseCase(txManager, repo).Issue(ctx, domain.IssueInput{
			Count:  1,
			Format: domain.FormatNumeric,
			Length: 8,
		})

		require.NoError(t, err)
		require.Len(t, tokens, 1)
		assert.Len(t, tokens[0].Value, 8)
		repo.AssertExpectations(t)
	})

	t.Run("Error_CollisionsExhausted", func(t *testing.T) {
		txManager := &mocks.MockTxManager{}
		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		repo := &mocks.MockTokenRepository{}
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrTokenAlreadyExists).Times(maxCollisionRetries)

		tokens, err := NewTokenUseCase(txManager, repo).Issue(ctx, domain.IssueInput{
			Count:  1,
			Format: domain.FormatUUID,
		})

		assert.ErrorIs(t, err, domain.ErrTokenAlreadyExists)
		assert.Nil(t, tokens)
		repo.AssertExpectations(t)
	})

	t.Run("Error_CreateFails", func(t *testing.T) {
		txManager := &mocks.MockTxManager{}
		txManager.On("WithTx", ctx, mock.Anything).Return(nil).Once()
		repo := &mocks.MockTokenRepository{}
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

		tokens, err := NewTokenUseCase(txManager, repo).Issue(ctx, domain.IssueInput{
			Count:  2,
			Format: domain.FormatAlphanumeric,
		})

		assert.EqualError(t, err, "db down")
		assert.Nil(t, tokens)
	})

	invalid := []struct {
		name        string
		input       domain.IssueInput
		expectedErr error
	}{
		{name: "ZeroCount", input: domain.IssueInput{Count: 0, Format: domain.FormatNumeric}, expectedErr: domain.ErrInvalidCount},
		{
			name:        "TooMany",
			input:       domain.IssueInput{Count: domain.MaxIssueCount + 1, Format: domain.FormatNumeric},
			expectedErr: domain.ErrInvalidCount,
		},
		{name: "UnknownFormat", input: domain.IssueInput{Count: 1, Format: "emoji"}, expectedErr: domain.ErrInvalidFormat},
		{
			name:        "ShortLength",
			input:       domain.IssueInput{Count: 1, Format: domain.FormatNumeric, Length: 2},
			expectedErr: domain.ErrInvalidLength,
		},
	}

	for _, tt := range invalid {
		t.Run("Error_"+tt.name, func(t *testing.T) {
			txManager := &mocks.MockTxManager{}
			txManager.On("WithTx", ctx, mock.Anything).Return(nil).Maybe()
			repo := &mocks.MockTokenRepository{}

			tokens, err := NewTokenUseCase(txManager, repo).Issue(ctx, tt.input)

			assert.ErrorIs(t, err, tt.expectedErr)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Nil(t, tokens)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}
