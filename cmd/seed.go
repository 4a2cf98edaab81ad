/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jjudge-oj/userapi/config"
	"github.com/jjudge-oj/userapi/internal/server"
	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedCount int
	seedValue uint64
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default superuser and fake users",
	Long: `Creates the "admin" superuser if it is missing, then fills the
directory with fake users when it holds fewer than --count accounts.
Every seeded account uses the password "123".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()

		deps, err := server.OpenDependencies(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = deps.Close() }()

		result, err := deps.Users.Seed(cmd.Context(), gofakeit.New(seedValue), seedCount)
		if err != nil {
			return err
		}

		logger.Info("seed finished",
			zap.Bool("admin_created", result.AdminCreated),
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "created %d users (%d skipped)\n", result.Created, result.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVar(&seedCount, "count", services.SeedUserCount, "minimum number of users to have after seeding")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 0, "random seed for fake data; 0 picks one")
}
