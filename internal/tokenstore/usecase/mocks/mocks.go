// Package mocks provides mock implementations of the token store usecase interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/qrgate/internal/tokenstore/domain"
)

// MockTokenRepository is a mock implementation of TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// ListValid mocks the ListValid method.
func (m *MockTokenRepository) ListValid(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Create mocks the Create method.
func (m *MockTokenRepository) Create(ctx context.Context, token *domain.StoredToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockTokenRepository) Get(ctx context.Context, value string) (*domain.StoredToken, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredToken), args.Error(1)
}

// Consume mocks the Consume method.
func (m *MockTokenRepository) Consume(ctx context.Context, value string, at time.Time) (bool, error) {
	args := m.Called(ctx, value, at)
	return args.Bool(0), args.Error(1)
}

// MockTokenUseCase is a mock implementation of TokenUseCase.
type MockTokenUseCase struct {
	mock.Mock
}

// List mocks the List method.
func (m *MockTokenUseCase) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Invalidate mocks the Invalidate method.
func (m *MockTokenUseCase) Invalidate(ctx context.Context, value string) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

// Issue mocks the Issue method.
func (m *MockTokenUseCase) Issue(ctx context.Context, input domain.IssueInput) ([]*domain.StoredToken, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StoredToken), args.Error(1)
}

// MockTxManager runs the callback directly without a transaction.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
