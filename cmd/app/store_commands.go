package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/qrgate/cmd/app/commands"
	"github.com/allisson/qrgate/internal/app"
	"github.com/allisson/qrgate/internal/config"
)

func getStoreCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-tokens",
			Usage: "Create fresh single-use tokens in the reference token store",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "count",
					Aliases: []string{"n"},
					Value:   1,
					Usage:   "Number of tokens to create",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "alphanumeric",
					Usage:   "Token format: 'alphanumeric', 'numeric' or 'uuid'",
				},
				&cli.IntFlag{
					Name:  "length",
					Value: 0,
					Usage: "Token length (0 uses the default, ignored for uuid)",
				},
				outputFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunIssueTokens(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("count")),
					cmd.String("format"),
					int(cmd.Int("length")),
					cmd.String("output"),
				)
			},
		},
		{
			Name:  "create-api-key",
			Usage: "Generate the token store API key and its hash",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "Encrypt the key for kiosks with this KMS keeper URI (defaults to KMS_KEY_URI)",
				},
				outputFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyURI := cfg.KMSKeyURI
				if cmd.IsSet("kms-key-uri") {
					keyURI = cmd.String("kms-key-uri")
				}

				return commands.RunCreateAPIKey(
					ctx,
					container.APIKeyHasher(),
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					keyURI,
					cmd.String("output"),
				)
			},
		},
	}
}
