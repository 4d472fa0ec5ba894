package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/qrgate/internal/tokenstore/domain"
	"github.com/allisson/qrgate/internal/tokenstore/usecase/mocks"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordScan(ctx context.Context, outcome string) {
	m.Called(ctx, outcome)
}

func expectMetrics(m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", mock.Anything, "store", operation, status).Once()
	m.On("RecordDuration", mock.Anything, "store", operation, mock.AnythingOfType("time.Duration"), status).Once()
}

func TestNewTokenUseCaseWithMetrics(t *testing.T) {
	decorator := NewTokenUseCaseWithMetrics(&mocks.MockTokenUseCase{}, &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.IsType(t, &tokenUseCaseWithMetrics{}, decorator)
}

func TestTokenUseCaseWithMetrics_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		useCase := &mocks.MockTokenUseCase{}
		useCase.On("List", ctx).Return([]string{"A"}, nil).Once()
		m := &mockBusinessMetrics{}
		expectMetrics(m, "token_list", "success")

		values, err := NewTokenUseCaseWithMetrics(useCase, m).List(ctx)

		assert.NoError(t, err)
		assert.Equal(t, []string{"A"}, values)
		m.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		useCase := &mocks.MockTokenUseCase{}
		useCase.On("List", ctx).Return(nil, errors.New("db down")).Once()
		m := &mockBusinessMetrics{}
		expectMetrics(m, "token_list", "error")

		_, err := NewTokenUseCaseWithMetrics(useCase, m).List(ctx)

		assert.Error(t, err)
		m.AssertExpectations(t)
	})
}

func TestTokenUseCaseWithMetrics_Invalidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		err            error
		expectedStatus string
	}{
		{name: "Success_RecordsSuccessMetrics", expectedStatus: "success"},
		{name: "Error_RecordsErrorMetrics", err: domain.ErrTokenConsumed, expectedStatus: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase := &mocks.MockTokenUseCase{}
			useCase.On("Invalidate", ctx, "ABC123").Return(tt.err).Once()
			m := &mockBusinessMetrics{}
			expectMetrics(m, "token_invalidate", tt.expectedStatus)

			err := NewTokenUseCaseWithMetrics(useCase, m).Invalidate(ctx, "ABC123")

			assert.Equal(t, tt.err, err)
			useCase.AssertExpectations(t)
			m.AssertExpectations(t)
		})
	}
}

func TestTokenUseCaseWithMetrics_Issue(t *testing.T) {
	ctx := context.Background()
	input := domain.IssueInput{Count: 1, Format: domain.FormatUUID}

	useCase := &mocks.MockTokenUseCase{}
	useCase.On("Issue", ctx, input).Return([]*domain.StoredToken{{Value: "v"}}, nil).Once()
	m := &mockBusinessMetrics{}
	expectMetrics(m, "token_issue", "success")

	tokens, err := NewTokenUseCaseWithMetrics(useCase, m).Issue(ctx, input)

	assert.NoError(t, err)
	assert.Len(t, tokens, 1)
	m.AssertExpectations(t)
}
