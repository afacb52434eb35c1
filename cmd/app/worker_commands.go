package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/payments/cmd/app/commands"
)

func getWorkerCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "worker",
			Usage: "Start the outbox and reconciliation workers",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunWorker(ctx)
			},
		},
		{
			Name:  "outbox",
			Usage: "Process one batch of pending outbox events",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunOutboxBatch(ctx, cmd.String("format"))
			},
		},
		{
			Name:  "reconcile",
			Usage: "Run one reconciliation sweep over stale intents and refunds",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunReconcileSweep(ctx, cmd.String("format"))
			},
		},
	}
}
