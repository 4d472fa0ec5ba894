package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/allisson/qrgate/internal/scan/journal"
)

// ScanLogReader reads persisted scans, newest first.
type ScanLogReader interface {
	List(ctx context.Context, limit int) ([]journal.Entry, error)
}

type scanLogEntry struct {
	ID               string    `json:"id"`
	TokenFingerprint string    `json:"token_fingerprint"`
	Outcome          string    `json:"outcome"`
	Error            string    `json:"error,omitempty"`
	ScannedAt        time.Time `json:"scanned_at"`
}

// RunScanLog prints the most recent journaled scans.
func RunScanLog(
	ctx context.Context,
	reader ScanLogReader,
	logger *slog.Logger,
	w io.Writer,
	limit int,
	output string,
) error {
	if err := validateOutput(output); err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}

	entries, err := reader.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read scan journal: %w", err)
	}
	logger.Debug("scan journal read", slog.Int("count", len(entries)))

	if output == OutputJSON {
		data := make([]scanLogEntry, 0, len(entries))
		for _, e := range entries {
			data = append(data, scanLogEntry{
				ID:               e.ID,
				TokenFingerprint: e.TokenFingerprint,
				Outcome:          string(e.Outcome),
				Error:            e.Error,
				ScannedAt:        e.ScannedAt,
			})
		}
		return writeJSON(w, map[string]any{"data": data})
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No scans recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SCANNED AT\tOUTCOME\tTOKEN\tERROR")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.ScannedAt.Format(time.RFC3339), e.Outcome, e.TokenFingerprint, e.Error)
	}
	return tw.Flush()
}
