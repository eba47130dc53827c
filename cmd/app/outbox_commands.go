package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/orderflow/cmd/app/commands"
	"github.com/allisson/orderflow/internal/app"
	"github.com/allisson/orderflow/internal/config"
)

func getOutboxCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "relay",
			Usage: "Run the outbox relay and janitor",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunRelay(ctx, version)
			},
		},
		{
			Name:  "outbox-janitor",
			Usage: "Requeue outbox events stuck in PROCESSING",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "older-than",
					Aliases: []string{"o"},
					Value:   5,
					Usage:   "Requeue events claimed more than this many minutes ago",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many events would be requeued without changing them",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				olderThan := time.Duration(cmd.Int("older-than")) * time.Minute

				cfg := config.Load()
				cfg.OutboxStuckThreshold = olderThan
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				janitor, err := container.JanitorUseCase()
				if err != nil {
					return err
				}

				return commands.RunOutboxJanitor(
					ctx,
					janitor,
					container.Logger(),
					cmd.Root().Writer,
					olderThan,
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
