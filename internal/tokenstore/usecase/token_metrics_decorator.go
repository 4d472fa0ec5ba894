package usecase

import (
	"context"
	"time"

	"github.com/allisson/qrgate/internal/metrics"
	"github.com/allisson/qrgate/internal/tokenstore/domain"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "store", operation, status)
	t.metrics.RecordDuration(ctx, "store", operation, time.Since(start), status)
}

// List records metrics for token listing.
func (t *tokenUseCaseWithMetrics) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	values, err := t.next.List(ctx)
	t.record(ctx, "token_list", start, err)
	return values, err
}

// Invalidate records metrics for token invalidation.
func (t *tokenUseCaseWithMetrics) Invalidate(ctx context.Context, value string) error {
	start := time.Now()
	err := t.next.Invalidate(ctx, value)
	t.record(ctx, "token_invalidate", start, err)
	return err
}

// Issue records metrics for token issuing.
func (t *tokenUseCaseWithMetrics) Issue(ctx context.Context, input domain.IssueInput) ([]*domain.StoredToken, error) {
	start := time.Now()
	tokens, err := t.next.Issue(ctx, input)
	t.record(ctx, "token_issue", start, err)
	return tokens, err
}
