package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server is an HTTP server that serves until shut down.
type Server interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Worker runs until its context is cancelled.
type Worker func(ctx context.Context) error

// serve runs servers and workers together until ctx is cancelled or any of
// them fails, then shuts the servers down within shutdownTimeout.
func serve(
	ctx context.Context,
	logger *slog.Logger,
	shutdownTimeout time.Duration,
	servers []Server,
	workers []Worker,
) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, worker := range workers {
		g.Go(func() error {
			if err := worker(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	for _, server := range servers {
		g.Go(func() error {
			return server.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var shutdownErrors []error
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("server shutdown: %w", err))
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}
