package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/allisson/qrgate/cmd/app/commands"
	"github.com/allisson/qrgate/internal/app"
	"github.com/allisson/qrgate/internal/config"
)

func getScanCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "list-tokens",
			Usage: "Fetch the valid token list from the token store",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "query",
					Aliases: []string{"q"},
					Usage:   "Only print tokens containing this text (case-insensitive)",
				},
				outputFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				client, err := container.TokenStoreClient()
				if err != nil {
					return err
				}

				return commands.RunListTokens(
					ctx,
					client,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("query"),
					cmd.String("output"),
				)
			},
		},
		{
			Name:  "scan-log",
			Usage: "Print the most recent journaled scans",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   20,
					Usage:   "Number of scans to print",
				},
				outputFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				scanJournal, err := container.Journal()
				if err != nil {
					return err
				}
				if scanJournal == nil {
					return errors.New("scan journal is disabled (JOURNAL_ENABLED=false)")
				}

				return commands.RunScanLog(
					ctx,
					scanJournal,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("limit")),
					cmd.String("output"),
				)
			},
		},
	}
}
