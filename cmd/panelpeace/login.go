package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/panel-peace/internal/apiclient"
	"github.com/jonathan/panel-peace/internal/observability"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Long:  `Log in to the API server. The password is read from --password or the PANELPEACE_PASSWORD env var.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("PANELPEACE_PASSWORD")
		}
		if loginEmail == "" || password == "" {
			return fmt.Errorf("--email and a password are required")
		}

		return withClient(cmd, func(ctx context.Context, c *apiclient.Client, _ *observability.Printer) error {
			user, err := c.Login(ctx, loginEmail, password)
			if err != nil {
				return err
			}
			say(cmd.OutOrStdout(), "Logged in as %s (%s)", user.Email, user.Role)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c *apiclient.Client, _ *observability.Printer) error {
			if err := c.Logout(ctx); err != nil {
				return err
			}
			say(cmd.OutOrStdout(), "Logged out")
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
