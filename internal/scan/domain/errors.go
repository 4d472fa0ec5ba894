package domain

import (
	"fmt"

	apperrors "github.com/allisson/qrgate/internal/errors"
)

// Scan error taxonomy. Every error below is recovered locally; none is fatal.
var (
	// ErrFetch matches any *FetchError.
	ErrFetch = apperrors.Wrap(apperrors.ErrUnavailable, "fetch tokens")

	// ErrInvalidate matches any *InvalidateError.
	ErrInvalidate = apperrors.Wrap(apperrors.ErrUnavailable, "invalidate token")

	// ErrDecodeSource matches any *DecodeSourceError.
	ErrDecodeSource = apperrors.Wrap(apperrors.ErrUnavailable, "decode source")

	// ErrInvalidTransition is returned when a command is not allowed in the current state.
	ErrInvalidTransition = apperrors.Wrap(apperrors.ErrConflict, "invalid transition")

	// ErrControllerStopped is returned when a command reaches a controller that is not running.
	ErrControllerStopped = apperrors.Wrap(apperrors.ErrUnavailable, "scan controller stopped")
)

// FetchError reports a failed token listing: transport error, non-200 status or
// a payload that is not an array of strings.
type FetchError struct {
	// Status is the HTTP status, zero when no response was received.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch tokens: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("fetch tokens: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches ErrFetch and the sentinels it wraps.
func (e *FetchError) Is(target error) bool { return apperrors.Is(ErrFetch, target) }

// InvalidateError reports a failed consume request.
type InvalidateError struct {
	Status int
	// Ambiguous is set when the request may have reached the store before failing
	// (timeout or connection lost after sending), so the token may be consumed.
	Ambiguous bool
	Err       error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.Ambiguous:
		return fmt.Sprintf("invalidate token: outcome unknown: %v", e.Err)
	case e.Status != 0:
		return fmt.Sprintf("invalidate token: status %d: %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("invalidate token: %v", e.Err)
	}
}

func (e *InvalidateError) Unwrap() error { return e.Err }

// Is matches ErrInvalidate and the sentinels it wraps.
func (e *InvalidateError) Is(target error) bool { return apperrors.Is(ErrInvalidate, target) }

// DecodeSourceError reports that the camera or scanner device could not be acquired.
type DecodeSourceError struct {
	Err error
}

func (e *DecodeSourceError) Error() string {
	return fmt.Sprintf("decode source unavailable: %v", e.Err)
}

func (e *DecodeSourceError) Unwrap() error { return e.Err }

// Is matches ErrDecodeSource and the sentinels it wraps.
func (e *DecodeSourceError) Is(target error) bool { return apperrors.Is(ErrDecodeSource, target) }
