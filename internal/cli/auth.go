package cli

import (
	"errors"
	"fmt"

	"taskManager/internal/identity"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the bearer token issued by the identity provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			claims, err := identity.ParseToken(token, "")
			if err != nil {
				return fmt.Errorf("invalid token: %w", err)
			}

			creds, err := app.credentials()
			if err != nil {
				return err
			}
			if err := creds.SetToken(token); err != nil {
				return err
			}
			if app.api != nil {
				app.api.SetToken(token)
			}
			return writeOut(cmd, app, claims.Viewer())
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "JWT bearer token")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := app.credentials()
			if err != nil {
				return err
			}
			if err := creds.DeleteToken(); err != nil {
				return err
			}
			if app.api != nil {
				app.api.SetToken("")
			}
			return writeOut(cmd, app, map[string]bool{"loggedOut": true})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the viewer identity used for categorization",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.viewer()
			if err != nil {
				return err
			}
			if !v.Known() {
				return errors.New("no identity: run `taskctl login --token <jwt>`")
			}
			return writeOut(cmd, app, v)
		},
	}
}
