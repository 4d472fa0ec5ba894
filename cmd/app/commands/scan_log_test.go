package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/allisson/qrgate/internal/scan/domain"
	"github.com/allisson/qrgate/internal/scan/journal"
)

type fakeScanLog struct {
	entries []journal.Entry
	err     error
	limit   int
}

func (f *fakeScanLog) List(ctx context.Context, limit int) ([]journal.Entry, error) {
	f.limit = limit
	return f.entries, f.err
}

func TestRunScanLog(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := []journal.Entry{
		{ID: "e2", TokenFingerprint: "3f2a9c1b", Outcome: domain.OutcomeVerificationFailed, Error: "store unreachable", ScannedAt: at},
		{ID: "e1", TokenFingerprint: "77b0d4e1", Outcome: domain.OutcomeValid, ScannedAt: at.Add(-time.Minute)},
	}

	t.Run("text-output", func(t *testing.T) {
		reader := &fakeScanLog{entries: entries}

		var out bytes.Buffer
		err := RunScanLog(ctx, reader, logger, &out, 20, "text")

		require.NoError(t, err)
		require.Equal(t, 20, reader.limit)
		require.Contains(t, out.String(), "SCANNED AT")
		require.Contains(t, out.String(), "verification_failed")
		require.Contains(t, out.String(), "store unreachable")
		require.Contains(t, out.String(), "2026-05-01T10:00:00Z")
	})

	t.Run("json-output", func(t *testing.T) {
		var out bytes.Buffer
		err := RunScanLog(ctx, &fakeScanLog{entries: entries}, logger, &out, 20, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"token_fingerprint": "77b0d4e1"`)
		require.Contains(t, out.String(), `"outcome": "valid"`)
	})

	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		err := RunScanLog(ctx, &fakeScanLog{}, logger, &out, 20, "text")

		require.NoError(t, err)
		require.Equal(t, "No scans recorded\n", out.String())
	})

	t.Run("invalid-limit", func(t *testing.T) {
		err := RunScanLog(ctx, &fakeScanLog{}, logger, &bytes.Buffer{}, 0, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "limit must be a positive number")
	})

	t.Run("journal-error", func(t *testing.T) {
		err := RunScanLog(ctx, &fakeScanLog{err: errors.New("disk I/O error")}, logger, &bytes.Buffer{}, 5, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read scan journal")
	})
}
