package cli

import (
	"errors"

	"taskManager/internal/handlers/dto"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Browse and manage the user directory",
	}

	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersActiveCmd(app))
	cmd.AddCommand(newUsersCreateCmd(app))
	cmd.AddCommand(newUsersUpdateCmd(app))
	cmd.AddCommand(newUsersDeleteCmd(app))
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			users, err := api.ListUsers(cmd.Context(), search)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, users)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Filter by name or id")
	return cmd
}

func newUsersActiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List users that can receive tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			users, err := api.ActiveUsers(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, users)
		},
	}
}

func newUsersCreateCmd(app *App) *cobra.Command {
	var (
		req      dto.CreateUserRequest
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.ID == "" || req.Name == "" {
				return errors.New("--id and --name are required")
			}
			if inactive {
				active := false
				req.IsActive = &active
			}
			api, err := app.client()
			if err != nil {
				return err
			}
			u, err := api.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, u)
		},
	}
	cmd.Flags().StringVar(&req.ID, "id", "", "User id (the identity provider subject)")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Avatar, "avatar", "", "Avatar URL")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the user as inactive")
	return cmd
}

func newUsersUpdateCmd(app *App) *cobra.Command {
	var (
		name, avatar string
		active       bool
	)

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Change a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.UpdateUserRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("avatar") {
				req.Avatar = &avatar
			}
			if cmd.Flags().Changed("active") {
				req.IsActive = &active
			}
			api, err := app.client()
			if err != nil {
				return err
			}
			u, err := api.UpdateUser(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, u)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")
	cmd.Flags().BoolVar(&active, "active", true, "Whether the user is active")
	return cmd
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Remove a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			if err := api.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"deleted": args[0]})
		},
	}
}
