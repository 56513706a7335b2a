package cli

import (
	"context"

	"taskManager/internal/notify"
	"taskManager/internal/worker"

	"github.com/spf13/cobra"
)

func newNotificationsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Local notifications",
	}

	cmd.AddCommand(newNotificationsListCmd(app))
	cmd.AddCommand(newNotificationsReadCmd(app))
	cmd.AddCommand(newNotificationsReadAllCmd(app))
	cmd.AddCommand(newNotificationsDeleteCmd(app))
	cmd.AddCommand(newNotificationsClearCmd(app))
	cmd.AddCommand(newNotificationsCheckCmd(app))
	return cmd
}

type notificationList struct {
	Unread        int                   `json:"unread" yaml:"unread"`
	Notifications []notify.Notification `json:"notifications" yaml:"notifications"`
}

func newNotificationsListCmd(app *App) *cobra.Command {
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.notifications()
			if err != nil {
				return err
			}
			list, err := store.List(cmd.Context(), unreadOnly)
			if err != nil {
				return err
			}
			unread, err := store.UnreadCount(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, notificationList{Unread: unread, Notifications: list})
		},
	}
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")
	return cmd
}

func newNotificationsReadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.notifications()
			if err != nil {
				return err
			}
			if err := store.MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"read": args[0]})
		},
	}
}

func newNotificationsReadAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.notifications()
			if err != nil {
				return err
			}
			if err := store.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]int{"unread": 0})
		},
	}
}

func newNotificationsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <notification-id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.notifications()
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"deleted": args[0]})
		},
	}
}

func newNotificationsClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.notifications()
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]bool{"cleared": true})
		},
	}
}

func newNotificationsCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fetch tasks once and record any new notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.refreshWorker(cmd.Context(), nil)
			if err != nil {
				return err
			}
			pass, err := w.Check(cmd.Context())
			if err != nil {
				return err
			}
			emitted := pass.Emitted
			if emitted == nil {
				emitted = []notify.Notification{}
			}
			return writeOut(cmd, app, emitted)
		},
	}
}

// refreshWorker builds a worker over the orchestrator; the user directory is loaded once, not per pass.
func (a *App) refreshWorker(ctx context.Context, onPass func(worker.Pass)) (*worker.RefreshWorker, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	o, err := a.orchestrator(ctx)
	if err != nil {
		return nil, err
	}
	store, err := a.notifications()
	if err != nil {
		return nil, err
	}
	interval := cfg.Client.RefreshInterval
	return worker.NewRefreshWorker(o, notify.NewDeduplicator(store), &interval, onPass), nil
}
