package dto

import (
	"time"

	"github.com/allisson/qrgate/internal/scan/domain"
)

// ScanResultResponse is the outcome on display while presenting.
type ScanResultResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Outcome   string    `json:"outcome"`
	Display   string    `json:"display"`
	Error     string    `json:"error,omitempty"`
	ScannedAt time.Time `json:"scanned_at"`
}

// HistoryEntryResponse is one recent scan.
type HistoryEntryResponse struct {
	Token     string    `json:"token"`
	Outcome   string    `json:"outcome"`
	Display   string    `json:"display"`
	ScannedAt time.Time `json:"scanned_at"`
}

// SessionResponse is the operator view of the scan session.
type SessionResponse struct {
	Version          uint64                 `json:"version"`
	State            string                 `json:"state"`
	ScannerRunning   bool                   `json:"scanner_running"`
	ScannerError     string                 `json:"scanner_error,omitempty"`
	LastScannedToken string                 `json:"last_scanned_token,omitempty"`
	Current          *ScanResultResponse    `json:"current,omitempty"`
	History          []HistoryEntryResponse `json:"history"`
	AdmittedCount    int64                  `json:"admitted_count"`
	CachedTokens     int                    `json:"cached_tokens"`
	CacheUpdatedAt   *time.Time             `json:"cache_updated_at,omitempty"`
}

// HistoryResponse wraps the recent scans list.
type HistoryResponse struct {
	Data []HistoryEntryResponse `json:"data"`
}

// TokenListResponse is a page of the cached token table.
type TokenListResponse struct {
	Data      []string   `json:"data"`
	Total     int        `json:"total"`
	Offset    int        `json:"offset"`
	Limit     int        `json:"limit"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// MapHistory converts history entries, never returning nil.
func MapHistory(entries []domain.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, HistoryEntryResponse{
			Token:     entry.Token.String(),
			Outcome:   string(entry.Outcome),
			Display:   entry.Outcome.Display(),
			ScannedAt: entry.At,
		})
	}
	return out
}

// MapSnapshotToResponse converts a session snapshot.
func MapSnapshotToResponse(snap domain.Snapshot) SessionResponse {
	resp := SessionResponse{
		Version:          snap.Version,
		State:            string(snap.State),
		ScannerRunning:   snap.SourceRunning,
		ScannerError:     snap.SourceError,
		LastScannedToken: snap.LastScannedToken.String(),
		History:          MapHistory(snap.History),
		AdmittedCount:    snap.AdmittedCount,
		CachedTokens:     snap.CachedTokens,
		CacheUpdatedAt:   optionalTime(snap.CacheUpdatedAt),
	}

	if snap.Current != nil {
		resp.Current = &ScanResultResponse{
			ID:        snap.Current.ID.String(),
			Token:     snap.Current.Token.String(),
			Outcome:   string(snap.Current.Outcome),
			Display:   snap.Current.Outcome.Display(),
			Error:     snap.Current.ErrorMessage(),
			ScannedAt: snap.Current.At,
		}
	}

	return resp
}

// MapTokensToResponse converts a page of tokens.
func MapTokensToResponse(tokens []domain.Token, total, offset, limit int, updatedAt time.Time) TokenListResponse {
	data := make([]string, 0, len(tokens))
	for _, token := range tokens {
		data = append(data, token.String())
	}
	return TokenListResponse{
		Data:      data,
		Total:     total,
		Offset:    offset,
		Limit:     limit,
		UpdatedAt: optionalTime(updatedAt),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}
