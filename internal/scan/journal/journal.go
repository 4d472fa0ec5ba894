// Package journal persists completed scans to a local SQLite file so the
// admitted count and scan log survive kiosk restarts. Tokens are stored as
// fingerprints only.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/allisson/qrgate/internal/scan/domain"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// Entry is one persisted scan.
type Entry struct {
	ID               string
	TokenFingerprint string
	Outcome          domain.Outcome
	Error            string
	ScannedAt        time.Time
}

// Journal is the SQLite-backed scan journal.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path. Use ":memory:" for a throwaway journal.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	// A single connection keeps ":memory:" journals on one database and
	// serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}

	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS scan_journal (
		id TEXT PRIMARY KEY,
		token_fingerprint TEXT NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		scanned_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scan_journal_scanned_at ON scan_journal(scanned_at);
	CREATE INDEX IF NOT EXISTS idx_scan_journal_outcome ON scan_journal(outcome);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends a completed scan.
func (j *Journal) Record(ctx context.Context, result domain.ScanResult) error {
	const q = `
		INSERT INTO scan_journal (id, token_fingerprint, outcome, error, scanned_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := j.db.ExecContext(ctx, q,
		result.ID.String(),
		domain.Fingerprint(result.Token),
		string(result.Outcome),
		result.ErrorMessage(),
		result.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

// List returns the most recent scans, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	const q = `
		SELECT id, token_fingerprint, outcome, error, scanned_at
		FROM scan_journal
		ORDER BY scanned_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := j.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			entry   Entry
			outcome string
		)
		if err := rows.Scan(&entry.ID, &entry.TokenFingerprint, &outcome, &entry.Error, &entry.ScannedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.Outcome = domain.Outcome(outcome)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}

	return entries, nil
}

// CountAdmitted returns the number of scans with a valid outcome.
func (j *Journal) CountAdmitted(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM scan_journal WHERE outcome = ?`

	var count int64
	if err := j.db.QueryRowContext(ctx, q, string(domain.OutcomeValid)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admitted: %w", err)
	}
	return count, nil
}
