package usecase

import (
	"context"
	"time"

	"github.com/allisson/qrgate/internal/metrics"
	"github.com/allisson/qrgate/internal/scan/domain"
)

// tokenStoreWithMetrics decorates TokenStore with metrics instrumentation.
type tokenStoreWithMetrics struct {
	next    TokenStore
	metrics metrics.BusinessMetrics
}

// NewTokenStoreWithMetrics wraps a TokenStore with metrics recording.
func NewTokenStoreWithMetrics(store TokenStore, m metrics.BusinessMetrics) TokenStore {
	return &tokenStoreWithMetrics{
		next:    store,
		metrics: m,
	}
}

// ListTokens records metrics for token list fetches.
func (s *tokenStoreWithMetrics) ListTokens(ctx context.Context) (domain.TokenSet, error) {
	start := time.Now()
	tokens, err := s.next.ListTokens(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "tokenstore", "list_tokens", status)
	s.metrics.RecordDuration(ctx, "tokenstore", "list_tokens", time.Since(start), status)

	return tokens, err
}

// Invalidate records metrics for token invalidation.
func (s *tokenStoreWithMetrics) Invalidate(ctx context.Context, token domain.Token) error {
	start := time.Now()
	err := s.next.Invalidate(ctx, token)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "tokenstore", "invalidate", status)
	s.metrics.RecordDuration(ctx, "tokenstore", "invalidate", time.Since(start), status)

	return err
}
