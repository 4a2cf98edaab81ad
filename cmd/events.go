/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/jjudge-oj/userapi/config"
	"github.com/jjudge-oj/userapi/internal/mq"
	"github.com/jjudge-oj/userapi/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print user lifecycle events as they arrive",
	Long: `Subscribes to MQ_USER_EVENTS_CHANNEL on the broker selected by
MQ_BACKEND and prints each user event as a JSON line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := mq.NewBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()

		enc := json.NewEncoder(cmd.OutOrStdout())
		logger.Info("listening for user events", zap.String("channel", cfg.MQ.EventChannel))
		err = mq.ConsumeUserEvents(ctx, backend, cfg.MQ.EventChannel, func(_ context.Context, event types.UserEvent) error {
			return enc.Encode(event)
		})
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
