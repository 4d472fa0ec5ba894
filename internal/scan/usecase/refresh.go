package usecase

import (
	"context"
	"log/slog"
	"time"
)

// DefaultRefreshInterval is the cadence of the periodic token refresh.
const DefaultRefreshInterval = 10 * time.Second

// RefreshLoop keeps the TokenCache in sync with the token store. It runs
// independently of the controller.
type RefreshLoop struct {
	interval time.Duration
	lister   TokenLister
	cache    *TokenCache
	logger   *slog.Logger
}

// NewRefreshLoop creates a RefreshLoop. A non-positive interval falls back to
// DefaultRefreshInterval.
func NewRefreshLoop(interval time.Duration, lister TokenLister, cache *TokenCache, logger *slog.Logger) *RefreshLoop {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshLoop{
		interval: interval,
		lister:   lister,
		cache:    cache,
		logger:   logger,
	}
}

// Start refreshes immediately and then on every tick until ctx is cancelled.
func (r *RefreshLoop) Start(ctx context.Context) error {
	if r.logger != nil {
		r.logger.Info("starting token refresh loop", slog.Duration("interval", r.interval))
	}

	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if r.logger != nil {
				r.logger.Info("stopping token refresh loop")
			}
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *RefreshLoop) refresh(ctx context.Context) {
	if err := r.cache.Refresh(ctx, r.lister); err != nil {
		if ctx.Err() != nil {
			return
		}
		if r.logger != nil {
			r.logger.Warn("token refresh failed, keeping previous tokens",
				slog.Int("cached_tokens", r.cache.Tokens().Len()),
				slog.Any("error", err),
			)
		}
		return
	}

	if r.logger != nil {
		r.logger.Debug("token cache refreshed", slog.Int("tokens", r.cache.Tokens().Len()))
	}
}
