package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of one completed scan attempt.
type Outcome string

const (
	OutcomeValid              Outcome = "valid"
	OutcomeInvalid            Outcome = "invalid"
	OutcomeVerificationFailed Outcome = "verification_failed"
)

// IsAdmitted reports whether the token was accepted and consumed.
func (o Outcome) IsAdmitted() bool {
	return o == OutcomeValid
}

// Display is what the operator sees. A failed verification is shown exactly like
// an invalid code so the operator always gets a definite answer.
func (o Outcome) Display() string {
	if o == OutcomeValid {
		return "valid"
	}
	return "invalid"
}

// ScanResult is produced once per completed scan attempt.
type ScanResult struct {
	ID      uuid.UUID
	Token   Token
	Outcome Outcome
	// Err is the verification error behind OutcomeVerificationFailed.
	Err error
	At  time.Time
}

// ErrorMessage returns the error text, or an empty string.
func (r ScanResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// HistoryEntry is an immutable record of a completed scan.
type HistoryEntry struct {
	Token   Token
	Outcome Outcome
	At      time.Time
}

// DefaultHistorySize is the number of recent scans kept.
const DefaultHistorySize = 10

// History is a bounded newest-first list of completed scans. It is not safe for
// concurrent use; the controller owns it.
type History struct {
	capacity int
	entries  []HistoryEntry
}

// NewHistory creates a history holding at most capacity entries. A non-positive
// capacity falls back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{capacity: capacity, entries: make([]HistoryEntry, 0, capacity)}
}

// Add inserts the entry at the front and evicts the oldest entry past capacity.
func (h *History) Add(entry HistoryEntry) {
	h.entries = append(h.entries, HistoryEntry{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = entry
	if len(h.entries) > h.capacity {
		h.entries = h.entries[:h.capacity]
	}
}

// Entries returns a newest-first copy.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Capacity returns the maximum number of entries.
func (h *History) Capacity() int {
	return h.capacity
}
