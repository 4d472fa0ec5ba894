package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/qrgate/internal/tokenstore/domain"
	storeMocks "github.com/allisson/qrgate/internal/tokenstore/usecase/mocks"
)

func TestRunIssueTokens(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()
	now := time.Now().UTC()
	issued := []*domain.StoredToken{
		{Value: "AB12CD34", CreatedAt: now},
		{Value: "EF56GH78", CreatedAt: now},
	}
	input := domain.IssueInput{Count: 2, Format: domain.FormatAlphanumeric, Length: 8}

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &storeMocks.MockTokenUseCase{}
		mockUseCase.On("Issue", ctx, input).Return(issued, nil)

		var out bytes.Buffer
		err := RunIssueTokens(ctx, mockUseCase, logger, &out, 2, "alphanumeric", 8, "text")

		require.NoError(t, err)
		require.Equal(t, "AB12CD34\nEF56GH78\n", out.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &storeMocks.MockTokenUseCase{}
		mockUseCase.On("Issue", ctx, input).Return(issued, nil)

		var out bytes.Buffer
		err := RunIssueTokens(ctx, mockUseCase, logger, &out, 2, "ALPHANUMERIC", 8, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"count": 2`)
		require.Contains(t, out.String(), `"EF56GH78"`)
	})

	t.Run("invalid-format", func(t *testing.T) {
		mockUseCase := &storeMocks.MockTokenUseCase{}

		err := RunIssueTokens(ctx, mockUseCase, logger, &bytes.Buffer{}, 2, "emoji", 8, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid token format")
		mockUseCase.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("invalid-output", func(t *testing.T) {
		err := RunIssueTokens(ctx, &storeMocks.MockTokenUseCase{}, logger, &bytes.Buffer{}, 2, "numeric", 8, "yaml")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid output format")
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := &storeMocks.MockTokenUseCase{}
		mockUseCase.On("Issue", ctx, mock.Anything).Return(nil, errors.New("db down"))

		err := RunIssueTokens(ctx, mockUseCase, logger, &bytes.Buffer{}, 2, "numeric", 8, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to issue tokens")
	})
}
