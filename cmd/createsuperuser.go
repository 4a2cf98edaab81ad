/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/jjudge-oj/userapi/config"
	"github.com/jjudge-oj/userapi/internal/server"
	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/spf13/cobra"
)

var superuserInput struct {
	username string
	email    string
	password string
}

// createSuperuserCmd represents the createsuperuser command
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an account with staff and superuser rights",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()

		deps, err := server.OpenDependencies(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = deps.Close() }()

		in := services.CreateUserInput{
			Username: superuserInput.username,
			Email:    superuserInput.email,
		}
		if superuserInput.password != "" {
			in.Password = &superuserInput.password
		}

		user, err := deps.Users.CreateSuperuser(cmd.Context(), in)
		if err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				for field, msgs := range verr.Fields {
					for _, msg := range msgs {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
					}
				}
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created with id %d.\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createSuperuserCmd)
	createSuperuserCmd.Flags().StringVar(&superuserInput.username, "username", "", "login name (required)")
	createSuperuserCmd.Flags().StringVar(&superuserInput.email, "email", "", "email address")
	createSuperuserCmd.Flags().StringVar(&superuserInput.password, "password", "", "password; empty leaves the account without a usable password")
	_ = createSuperuserCmd.MarkFlagRequired("username")
}
