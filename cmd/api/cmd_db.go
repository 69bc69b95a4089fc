package main

import (
	"errors"
	"fmt"

	"campus-market/internal/database"
	"campus-market/internal/model"
	"campus-market/internal/service"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := database.Migrate(cmd.Context(), a.pool, a.logger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var promoteEmail string

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Grant the admin role to a registered user",
	Example: `  campus-market promote --email ana@iteso.mx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		repos := a.repositories()
		authService := service.NewAuthService(repos.users, a.tokenManager(), a.logger)

		if err := authService.Promote(cmd.Context(), promoteEmail); err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				return fmt.Errorf("no user registered with email %s", promoteEmail)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", promoteEmail)
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "email of the user to promote")
	_ = promoteCmd.MarkFlagRequired("email")
}
