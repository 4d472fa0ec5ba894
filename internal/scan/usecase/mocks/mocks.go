// Package mocks provides mock implementations of the scan usecase collaborators.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/qrgate/internal/scan/domain"
)

// MockTokenStore is a mock implementation of TokenStore.
type MockTokenStore struct {
	mock.Mock
}

// ListTokens mocks the ListTokens method.
func (m *MockTokenStore) ListTokens(ctx context.Context) (domain.TokenSet, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.TokenSet), args.Error(1)
}

// Invalidate mocks the Invalidate method.
func (m *MockTokenStore) Invalidate(ctx context.Context, token domain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockDecodeSource is a mock implementation of DecodeSource. The callbacks given
// to the latest successful Start are kept so tests can fire decode and failure
// events.
type MockDecodeSource struct {
	mock.Mock
	callbacks chan func(string)

	mu       sync.Mutex
	onFailed func(error)
}

// NewMockDecodeSource creates a MockDecodeSource.
func NewMockDecodeSource() *MockDecodeSource {
	return &MockDecodeSource{callbacks: make(chan func(string), 16)}
}

// Start mocks the Start method.
func (m *MockDecodeSource) Start(
	ctx context.Context,
	onDecoded func(text string),
	onFailed func(err error),
) (domain.SourceHandle, error) {
	args := m.Called(ctx, onDecoded, onFailed)
	err := args.Error(1)
	if err == nil {
		m.mu.Lock()
		m.onFailed = onFailed
		m.mu.Unlock()
		m.callbacks <- onDecoded
	}
	return args.Get(0).(domain.SourceHandle), err
}

// Stop mocks the Stop method.
func (m *MockDecodeSource) Stop(handle domain.SourceHandle) error {
	args := m.Called(handle)
	return args.Error(0)
}

// NextCallback waits for the callback passed to the next successful Start.
func (m *MockDecodeSource) NextCallback(timeout time.Duration) (func(string), bool) {
	select {
	case cb := <-m.callbacks:
		return cb, true
	case <-time.After(timeout):
		return nil, false
	}
}

// LastFailure returns the failure callback passed to the latest successful Start.
func (m *MockDecodeSource) LastFailure() func(error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onFailed
}

// MockJournal is a mock implementation of Journal.
type MockJournal struct {
	mock.Mock
}

// Record mocks the Record method.
func (m *MockJournal) Record(ctx context.Context, result domain.ScanResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// CountAdmitted mocks the CountAdmitted method.
func (m *MockJournal) CountAdmitted(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
