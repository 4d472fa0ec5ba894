package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RunStoreServer serves the reference token store until ctx is cancelled.
// metricsServer may be nil.
func RunStoreServer(
	ctx context.Context,
	logger *slog.Logger,
	storeServer Server,
	metricsServer Server,
	shutdownTimeout time.Duration,
) error {
	logger.Info("starting token store server")

	servers := []Server{storeServer}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	if err := serve(ctx, logger, shutdownTimeout, servers, nil); err != nil {
		return fmt.Errorf("token store server stopped: %w", err)
	}

	logger.Info("token store server stopped")
	return nil
}
