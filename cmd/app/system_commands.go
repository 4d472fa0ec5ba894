package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/browser"
	"github.com/urfave/cli/v3"

	"github.com/allisson/qrgate/cmd/app/commands"
	"github.com/allisson/qrgate/internal/app"
	"github.com/allisson/qrgate/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "kiosk",
			Usage: "Start the scan kiosk and its operator page",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "open-browser",
					Usage: "Open the operator page in the default browser",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if cmd.IsSet("open-browser") {
					cfg.OpenBrowser = cmd.Bool("open-browser")
				}
				container := app.NewContainer(cfg)
				logger := container.Logger()
				defer func() { _ = container.Shutdown(context.Background()) }()

				logger.Info("qrgate kiosk", slog.String("version", version))

				controller, err := container.Controller()
				if err != nil {
					return err
				}
				refreshLoop, err := container.RefreshLoop()
				if err != nil {
					return err
				}
				kioskServer, err := container.KioskServer()
				if err != nil {
					return err
				}
				metricsServer, err := optionalMetricsServer(container)
				if err != nil {
					return err
				}

				return commands.RunKiosk(
					ctx,
					logger,
					controller.Run,
					refreshLoop.Start,
					kioskServer,
					metricsServer,
					browser.OpenURL,
					commands.KioskOptions{
						URL:             operatorURL(cfg),
						OpenBrowser:     cfg.OpenBrowser,
						ShutdownTimeout: cfg.ShutdownTimeout,
					},
				)
			},
		},
		{
			Name:  "store-server",
			Usage: "Start the reference token store HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				logger := container.Logger()
				defer func() { _ = container.Shutdown(context.Background()) }()

				logger.Info("qrgate token store", slog.String("version", version))

				storeServer, err := container.StoreServer(ctx)
				if err != nil {
					return err
				}
				metricsServer, err := optionalMetricsServer(container)
				if err != nil {
					return err
				}

				return commands.RunStoreServer(ctx, logger, storeServer, metricsServer, container.Config().ShutdownTimeout)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run token store database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
	}
}

// optionalMetricsServer returns nil when metrics are disabled so callers can
// skip it without a typed-nil interface.
func optionalMetricsServer(container *app.Container) (commands.Server, error) {
	if !container.Config().MetricsEnabled {
		return nil, nil
	}
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return nil, err
	}
	return metricsServer, nil
}

func operatorURL(cfg *config.Config) string {
	host := cfg.ServerHost
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d/", host, cfg.ServerPort)
}
