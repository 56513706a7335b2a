package cli

import (
	"errors"
	"fmt"
	"strings"

	"taskManager/internal/category"
	"taskManager/internal/orchestrator"
	"taskManager/internal/viewmodel"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, change and share tasks",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksChipsCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksShareCmd(app))
	cmd.AddCommand(newTasksShareBulkCmd(app))
	cmd.AddCommand(newTasksStatsCmd(app))
	return cmd
}

func parseStatusFlag(s string) (viewmodel.Status, error) {
	if s == "" {
		return "", nil
	}
	st, ok := viewmodel.ParseStatus(s)
	if !ok {
		return "", fmt.Errorf("unknown status %q (to do|in progress|done|cancelled)", s)
	}
	return st, nil
}

func parsePriorityFlag(s string) (viewmodel.Priority, error) {
	if s == "" {
		return "", nil
	}
	p, ok := viewmodel.ParsePriority(s)
	if !ok {
		return "", fmt.Errorf("unknown priority %q (low|medium|high|critical)", s)
	}
	return p, nil
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		cat, assignedBy, search, status, priority string
		sortBy, order, policy                     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return err
			}

			f := category.Filter{AssignedBy: assignedBy, Search: search}
			if f.Category, err = category.ParseCategory(cat); err != nil {
				return err
			}
			if policy == "" {
				policy = cfg.Client.AssignedToUsersPolicy
			}
			if f.Policy, err = category.ParsePolicy(policy); err != nil {
				return err
			}
			if f.Status, err = parseStatusFlag(status); err != nil {
				return err
			}
			if f.Priority, err = parsePriorityFlag(priority); err != nil {
				return err
			}
			field, err := category.ParseSortField(sortBy)
			if err != nil {
				return err
			}
			var desc bool
			switch strings.ToLower(order) {
			case "", "asc":
			case "desc":
				desc = true
			default:
				return fmt.Errorf("unknown order %q (asc|desc)", order)
			}

			o, err := app.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			tasks, err := o.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, category.Sort(f.Apply(tasks, o.Viewer()), field, desc))
		},
	}

	cmd.Flags().StringVar(&cat, "category", "all", "all|my|assigned|assigned-to-users|shared")
	cmd.Flags().StringVar(&assignedBy, "assigned-by", "", "With --category assigned: only tasks created by this user id")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive text in title or description")
	cmd.Flags().StringVar(&status, "status", "", "to do|in progress|done|cancelled")
	cmd.Flags().StringVar(&priority, "priority", "", "low|medium|high|critical")
	cmd.Flags().StringVar(&sortBy, "sort", "created_at", "created_at|due_date|priority|title")
	cmd.Flags().StringVar(&order, "order", "asc", "asc|desc")
	cmd.Flags().StringVar(&policy, "policy", "", "assigned-to-users rule: inclusive|exclude-self (default from config)")
	return cmd
}

func newTasksChipsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chips",
		Short: "Show who assigned tasks to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			tasks, err := o.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, category.AssignerChips(tasks, o.Viewer(), o.Names()))
		},
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var (
		in               orchestrator.TaskInput
		status, priority string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(in.Title) == "" {
				return errors.New("--title is required")
			}
			var err error
			if in.Status, err = parseStatusFlag(status); err != nil {
				return err
			}
			if in.Priority, err = parsePriorityFlag(priority); err != nil {
				return err
			}

			o, err := app.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			created, err := o.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, created)
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&status, "status", "", "to do|in progress|done|cancelled")
	cmd.Flags().StringVar(&priority, "priority", "", "low|medium|high|critical")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringSliceVar(&in.Images, "image", nil, "Stored image reference (repeatable)")
	cmd.Flags().StringSliceVar(&in.AssignedTo, "assign", nil, "Assignee user id (repeatable; default: you)")
	cmd.Flags().StringSliceVar(&in.SharedWith, "share", nil, "Share target user id (repeatable)")
	cmd.Flags().StringVar(&in.Note, "note", "", "Note")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var (
		title, description, status, priority, due, note string
		tags, images, assign                             []string
		version                                          int
	)

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			var p orchestrator.TaskPatch

			if changed("title") {
				p.Title = &title
			}
			if changed("description") {
				p.Description = &description
			}
			if changed("status") {
				st, err := parseStatusFlag(status)
				if err != nil {
					return err
				}
				p.Status = &st
			}
			if changed("priority") {
				pr, err := parsePriorityFlag(priority)
				if err != nil {
					return err
				}
				p.Priority = &pr
			}
			if changed("due") {
				p.DueDate = &due
			}
			if changed("note") {
				p.Note = &note
			}
			if changed("tag") {
				p.Tags = nonNil(tags)
			}
			if changed("image") {
				p.Images = nonNil(images)
			}
			if changed("assign") {
				p.AssignedTo = nonNil(assign)
			}
			if changed("version") {
				p.Version = &version
			}

			o, err := app.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			if p.Version == nil {
				// warm the cache so the update carries the version we last saw
				if _, err := o.Tasks(cmd.Context()); err != nil {
					return err
				}
			}
			updated, err := o.Update(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, updated)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&status, "status", "", "to do|in progress|done|cancelled")
	cmd.Flags().StringVar(&priority, "priority", "", "low|medium|high|critical")
	cmd.Flags().StringVar(&due, "due", "", `Due date (YYYY-MM-DD); "" clears it`)
	cmd.Flags().StringVar(&note, "note", "", "Note (you become its author)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace tags (repeatable)")
	cmd.Flags().StringSliceVar(&images, "image", nil, "Replace image references (repeatable)")
	cmd.Flags().StringSliceVar(&assign, "assign", nil, "Replace assignees (repeatable)")
	cmd.Flags().IntVar(&version, "version", 0, "Expected task version (default: last fetched)")
	return cmd
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func newTasksStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Move a task to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatusFlag(args[1])
			if err != nil {
				return err
			}
			o, err := app.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := o.Tasks(cmd.Context()); err != nil {
				return err
			}
			updated, err := o.SetStatus(cmd.Context(), args[0], st)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, updated)
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task you created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			if err := o.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"deleted": args[0]})
		},
	}
}

func newTasksShareCmd(app *App) *cobra.Command {
	var (
		users   []string
		message string
	)

	cmd := &cobra.Command{
		Use:   "share <task-id>",
		Short: "Share a task with other users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(users) == 0 {
				return errors.New("at least one --user is required")
			}
			o, err := app.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := o.Share(cmd.Context(), args[0], users, message)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, resp)
		},
	}
	cmd.Flags().StringSliceVar(&users, "user", nil, "User id to share with (repeatable)")
	cmd.Flags().StringVar(&message, "message", "", "Optional message")
	return cmd
}

func newTasksShareBulkCmd(app *App) *cobra.Command {
	var (
		taskIDs, users []string
		message        string
	)

	cmd := &cobra.Command{
		Use:   "share-bulk",
		Short: "Share several tasks at once; partial failures are reported, not rolled back",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(taskIDs) == 0 || len(users) == 0 {
				return errors.New("at least one --task and one --user are required")
			}
			o, err := app.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, o.BulkShare(cmd.Context(), taskIDs, users, message))
		},
	}
	cmd.Flags().StringSliceVar(&taskIDs, "task", nil, "Task id (repeatable)")
	cmd.Flags().StringSliceVar(&users, "user", nil, "User id to share with (repeatable)")
	cmd.Flags().StringVar(&message, "message", "", "Optional message")
	return cmd
}

func newTasksStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summary of your tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			stats, err := api.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, stats)
		},
	}
}
