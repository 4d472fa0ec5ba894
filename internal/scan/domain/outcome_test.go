package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_Display(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		admitted bool
		display  string
	}{
		{outcome: OutcomeValid, admitted: true, display: "valid"},
		{outcome: OutcomeInvalid, admitted: false, display: "invalid"},
		{outcome: OutcomeVerificationFailed, admitted: false, display: "invalid"},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			assert.Equal(t, tt.admitted, tt.outcome.IsAdmitted())
			assert.Equal(t, tt.display, tt.outcome.Display())
		})
	}
}

func TestScanResult_ErrorMessage(t *testing.T) {
	assert.Empty(t, ScanResult{Outcome: OutcomeValid}.ErrorMessage())

	result := ScanResult{Outcome: OutcomeVerificationFailed, Err: errors.New("timeout")}
	assert.Equal(t, "timeout", result.ErrorMessage())
}

func entry(i int) HistoryEntry {
	return HistoryEntry{
		Token:   Token(fmt.Sprintf("T%d", i)),
		Outcome: OutcomeInvalid,
		At:      time.Unix(int64(i), 0),
	}
}

func TestHistory_NewestFirst(t *testing.T) {
	h := NewHistory(3)
	h.Add(entry(1))
	h.Add(entry(2))

	entries := h.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Token("T2"), entries[0].Token)
	assert.Equal(t, Token("T1"), entries[1].Token)
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	for i := 1; i <= 11; i++ {
		h.Add(entry(i))
	}

	entries := h.Entries()
	require.Len(t, entries, DefaultHistorySize)
	assert.Equal(t, Token("T11"), entries[0].Token)
	assert.Equal(t, Token("T2"), entries[len(entries)-1].Token)
	for _, e := range entries {
		assert.NotEqual(t, Token("T1"), e.Token)
	}
}

func TestHistory_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultHistorySize, NewHistory(0).Capacity())
	assert.Equal(t, DefaultHistorySize, NewHistory(-3).Capacity())
	assert.Equal(t, 4, NewHistory(4).Capacity())
}

func TestHistory_EntriesReturnsCopy(t *testing.T) {
	h := NewHistory(2)
	h.Add(entry(1))

	entries := h.Entries()
	entries[0].Token = "mutated"

	assert.Equal(t, Token("T1"), h.Entries()[0].Token)
	assert.Equal(t, 1, h.Len())
}

func TestState_Busy(t *testing.T) {
	assert.False(t, StateIdle.Busy())
	assert.False(t, StateScanning.Busy())
	assert.True(t, StateVerifying.Busy())
	assert.True(t, StatePresenting.Busy())
}
