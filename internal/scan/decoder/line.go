package decoder

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/allisson/qrgate/internal/scan/domain"
)

var errDeviceClosed = errors.New("scanner device closed")

// Opener acquires the scanner device.
type Opener func() (io.ReadCloser, error)

// FileOpener opens the device at path, for example /dev/ttyACM0 or /dev/stdin.
func FileOpener(path string) Opener {
	return func() (io.ReadCloser, error) {
		return os.Open(path) //nolint:gosec // path comes from operator configuration
	}
}

// LineSource reads one payload per line from a scanner device. The device is
// opened on Start and closed on Stop; Stop returns only once the reader
// goroutine has exited.
type LineSource struct {
	open   Opener
	logger *slog.Logger

	mu     sync.Mutex
	next   domain.SourceHandle
	active *lineReader
}

type lineReader struct {
	handle    domain.SourceHandle
	device    io.ReadCloser
	stopped   atomic.Bool
	done      chan struct{}
	stopAfter func() bool
}

// NewLineSource creates a stopped LineSource.
func NewLineSource(open Opener, logger *slog.Logger) *LineSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LineSource{open: open, logger: logger}
}

// Start tears down any previous instance, opens the device and starts reading.
// The instance is also stopped when ctx is cancelled.
func (s *LineSource) Start(
	ctx context.Context,
	onDecoded func(text string),
	onFailed func(err error),
) (domain.SourceHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		if err := s.stopLocked(); err != nil {
			s.logger.Warn("failed to close previous scanner device", slog.Any("error", err))
		}
	}

	device, err := s.open()
	if err != nil {
		return 0, &domain.DecodeSourceError{Err: err}
	}

	s.next++
	r := &lineReader{
		handle: s.next,
		device: device,
		done:   make(chan struct{}),
	}
	handle := r.handle
	r.stopAfter = context.AfterFunc(ctx, func() {
		_ = s.Stop(handle)
	})
	s.active = r

	go s.read(r, onDecoded, onFailed)

	return handle, nil
}

// Stop closes the device of handle and waits for its reader to exit. Stopping a
// handle that is not active is a no-op.
func (s *LineSource) Stop(handle domain.SourceHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.handle != handle {
		return nil
	}
	return s.stopLocked()
}

func (s *LineSource) stopLocked() error {
	r := s.active
	s.active = nil

	r.stopAfter()
	r.stopped.Store(true)
	err := r.device.Close()
	<-r.done
	return err
}

func (s *LineSource) read(r *lineReader, onDecoded func(string), onFailed func(error)) {
	defer close(r.done)

	scanner := bufio.NewScanner(r.device)
	for scanner.Scan() {
		if r.stopped.Load() {
			return
		}
		// Blank reads are scanner noise.
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		onDecoded(line)
	}

	if r.stopped.Load() {
		return
	}
	err := scanner.Err()
	if err == nil || errors.Is(err, os.ErrClosed) {
		err = errDeviceClosed
	}
	s.logger.Warn("scanner device failed", slog.Any("error", err))
	onFailed(&domain.DecodeSourceError{Err: err})
}
