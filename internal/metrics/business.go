package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records kiosk operations.
type BusinessMetrics interface {
	// RecordOperation records an operation with its status.
	// Domain examples: "tokenstore", "scanner"
	// Operation examples: "list_tokens", "invalidate", "start"
	// Status examples: "success", "error"
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordScan counts a completed scan attempt by outcome
	// ("valid", "invalid", "verification_failed").
	RecordScan(ctx context.Context, outcome string)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	scanCounter      metric.Int64Counter
}

// NewBusinessMetrics creates the business instruments on the provider's meter.
func NewBusinessMetrics(provider *Provider) (BusinessMetrics, error) {
	meter := provider.Meter()

	operationCounter, err := meter.Int64Counter(
		provider.name("operations_total"),
		metric.WithDescription("Total number of kiosk operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		provider.name("operation_duration_seconds"),
		metric.WithDescription("Duration of kiosk operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	scanCounter, err := meter.Int64Counter(
		provider.name("scans_total"),
		metric.WithDescription("Completed scan attempts by outcome"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		scanCounter:      scanCounter,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordScan(ctx context.Context, outcome string) {
	b.scanCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

// RecordDuration does nothing.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

// RecordScan does nothing.
func (n *NoOpBusinessMetrics) RecordScan(ctx context.Context, outcome string) {}
