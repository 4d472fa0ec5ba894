package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// KioskOptions configures RunKiosk.
type KioskOptions struct {
	// URL is the operator page address, opened when OpenBrowser is set.
	URL             string
	OpenBrowser     bool
	ShutdownTimeout time.Duration
}

// RunKiosk runs the scan controller, the token refresh loop and the operator
// and metrics servers until ctx is cancelled or one of them fails.
// metricsServer may be nil. openURL is called once the servers are starting.
func RunKiosk(
	ctx context.Context,
	logger *slog.Logger,
	controller Worker,
	refreshLoop Worker,
	kioskServer Server,
	metricsServer Server,
	openURL func(url string) error,
	opts KioskOptions,
) error {
	logger.Info("starting kiosk", slog.String("url", opts.URL))

	servers := []Server{kioskServer}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	workers := []Worker{controller, refreshLoop}
	if opts.OpenBrowser && openURL != nil {
		workers = append(workers, func(ctx context.Context) error {
			// Give the listener a moment before the browser connects.
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(500 * time.Millisecond):
			}
			if err := openURL(opts.URL); err != nil {
				logger.Warn("failed to open browser", slog.String("url", opts.URL), slog.Any("error", err))
			}
			return nil
		})
	}

	if err := serve(ctx, logger, opts.ShutdownTimeout, servers, workers); err != nil {
		return fmt.Errorf("kiosk stopped: %w", err)
	}

	logger.Info("kiosk stopped")
	return nil
}
