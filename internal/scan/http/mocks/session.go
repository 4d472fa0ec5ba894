// Package mocks provides mock implementations for testing operator API handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/qrgate/internal/scan/domain"
)

// MockSession is a mock implementation of the scan Session.
type MockSession struct {
	mock.Mock
}

// StartScanning mocks the StartScanning method.
func (m *MockSession) StartScanning(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// StopScanning mocks the StopScanning method.
func (m *MockSession) StopScanning(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Snapshot mocks the Snapshot method.
func (m *MockSession) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

// Subscribe mocks the Subscribe method.
func (m *MockSession) Subscribe() (<-chan domain.Snapshot, func()) {
	args := m.Called()
	return args.Get(0).(<-chan domain.Snapshot), args.Get(1).(func())
}

// MockPayloadReceiver is a mock implementation of PayloadReceiver.
type MockPayloadReceiver struct {
	mock.Mock
}

// Deliver mocks the Deliver method.
func (m *MockPayloadReceiver) Deliver(text string) bool {
	args := m.Called(text)
	return args.Bool(0)
}

// Fail mocks the Fail method.
func (m *MockPayloadReceiver) Fail(err error) bool {
	args := m.Called(err)
	return args.Bool(0)
}
