// Package usecase implements the scan session: the controller state machine,
// the token cache and its periodic refresh loop.
package usecase

import (
	"context"

	"github.com/allisson/qrgate/internal/scan/domain"
)

// TokenStore is the remote authority on which tokens are currently valid.
type TokenStore interface {
	// ListTokens returns the current valid tokens or a *domain.FetchError.
	ListTokens(ctx context.Context) (domain.TokenSet, error)

	// Invalidate consumes token or returns a *domain.InvalidateError.
	Invalidate(ctx context.Context, token domain.Token) error
}

// TokenLister is the read side of TokenStore used by the refresh loop.
type TokenLister interface {
	ListTokens(ctx context.Context) (domain.TokenSet, error)
}

// DecodeSource yields decoded payloads asynchronously once started.
//
// Start must fully tear down any previous instance before acquiring the device
// again, and must return a *domain.DecodeSourceError when the device cannot be
// acquired. A device that fails after Start reports it once through onFailed.
// Neither callback may block, and after Stop returns neither is called for
// that handle.
type DecodeSource interface {
	Start(ctx context.Context, onDecoded func(text string), onFailed func(err error)) (domain.SourceHandle, error)
	Stop(handle domain.SourceHandle) error
}

// Journal persists completed scans.
type Journal interface {
	Record(ctx context.Context, result domain.ScanResult) error
	CountAdmitted(ctx context.Context) (int64, error)
}

// Session is the controller surface used by the presentation layer.
type Session interface {
	StartScanning(ctx context.Context) error
	StopScanning(ctx context.Context) error
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	Subscribe() (<-chan domain.Snapshot, func())
}
