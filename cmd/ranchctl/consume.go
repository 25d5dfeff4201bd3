package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/monkey-ranch/internal/config"
	"github.com/iliyamo/monkey-ranch/internal/queue"
)

func newConsumeCmd(cfg func() config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Append received proofs to the proof log until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := cfg()
			if c.RabbitURL == "" {
				return errors.New("RABBITMQ_URL is not set")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			err := (&queue.Consumer{URL: c.RabbitURL, LogDir: c.QueueLogDir}).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
