/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/jjudge-oj/userapi/config"
	"github.com/jjudge-oj/userapi/internal/server"
	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/jjudge-oj/userapi/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload the user directory to object storage",
	Long: `Writes every user as one JSON object per line to the bucket selected
by STORAGE_BACKEND (minio or gcs). Password hashes are never exported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()

		objects, err := storage.NewObjectStorage(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = objects.Close() }()

		deps, err := server.OpenDependencies(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = deps.Close() }()

		key, count, err := services.NewDirectoryExporter(deps.Users, objects).Export(cmd.Context())
		if err != nil {
			return err
		}

		logger.Info("export finished",
			zap.String("bucket", objects.Bucket()),
			zap.String("key", key),
			zap.Int("users", count),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d users to %s/%s\n", count, objects.Bucket(), key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
