// Package decoder provides decode sources: where decoded QR payloads come from.
//
// PushSource receives payloads decoded elsewhere (the operator page decodes the
// camera feed in the browser and posts the text). LineSource reads a
// line-oriented scanner device such as a keyboard-wedge or serial QR reader.
package decoder

import (
	"context"
	"sync"

	"github.com/allisson/qrgate/internal/scan/domain"
)

// PushSource is a decode source fed through Deliver. Only the most recently
// started handle receives payloads.
type PushSource struct {
	mu        sync.Mutex
	next      domain.SourceHandle
	active    domain.SourceHandle
	onDecoded func(string)
	onFailed  func(error)
}

// NewPushSource creates a stopped PushSource.
func NewPushSource() *PushSource {
	return &PushSource{}
}

// Start replaces any previous instance and returns the new handle.
func (p *PushSource) Start(
	_ context.Context,
	onDecoded func(text string),
	onFailed func(err error),
) (domain.SourceHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.next++
	p.active = p.next
	p.onDecoded = onDecoded
	p.onFailed = onFailed
	return p.active, nil
}

// Stop releases handle. Stopping a handle that is not active is a no-op.
func (p *PushSource) Stop(handle domain.SourceHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if handle == 0 || handle != p.active {
		return nil
	}
	p.active = 0
	p.onDecoded = nil
	p.onFailed = nil
	return nil
}

// Deliver hands a decoded payload to the running instance. It returns false
// when the source is stopped.
func (p *PushSource) Deliver(text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.onDecoded == nil {
		return false
	}
	p.onDecoded(text)
	return true
}

// Fail reports that the camera feeding the running instance failed, for
// example because it is missing or permission was denied. The instance is
// detached so later payloads are refused. It returns false when the source is
// stopped.
func (p *PushSource) Fail(err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.onFailed == nil {
		return false
	}
	onFailed := p.onFailed
	p.onDecoded = nil
	p.onFailed = nil
	onFailed(&domain.DecodeSourceError{Err: err})
	return true
}

// Running reports whether an instance is started.
func (p *PushSource) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != 0
}
