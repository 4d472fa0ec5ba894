package domain

import "time"

// State is the scan session state.
type State string

const (
	// StateIdle: no scan in flight; the decode source is stopped.
	StateIdle State = "idle"
	// StateScanning: the decode source is running and a payload is awaited.
	StateScanning State = "scanning"
	// StateVerifying: exactly one verification is in flight.
	StateVerifying State = "verifying"
	// StatePresenting: the outcome is displayed for the present duration.
	StatePresenting State = "presenting"
)

// Busy reports whether a scan attempt is in flight, during which decode events are ignored.
func (s State) Busy() bool {
	return s == StateVerifying || s == StatePresenting
}

// Snapshot is a read-only copy of the session handed to the presentation layer.
type Snapshot struct {
	Version          uint64
	State            State
	SourceRunning    bool
	SourceError      string
	LastScannedToken Token
	// Current is the result on display while presenting.
	Current        *ScanResult
	History        []HistoryEntry
	AdmittedCount  int64
	CachedTokens   int
	CacheUpdatedAt time.Time
}

// SourceHandle identifies one running instance of a decode source. The zero
// value never refers to a running instance.
type SourceHandle uint64
