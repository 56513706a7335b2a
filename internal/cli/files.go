package cli

import (
	"fmt"
	"mime"
	"path/filepath"

	"taskManager/internal/client"

	"github.com/spf13/cobra"
)

func newFilesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Upload and delete task images",
	}
	cmd.AddCommand(newFilesUploadCmd(app))
	cmd.AddCommand(newFilesDeleteCmd(app))
	return cmd
}

func newFilesUploadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload images and print their stored references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads := make([]client.Upload, 0, len(args))
			for _, p := range args {
				f, err := app.Fs.Open(p)
				if err != nil {
					return fmt.Errorf("opening %s: %w", p, err)
				}
				defer f.Close()

				ct := mime.TypeByExtension(filepath.Ext(p))
				if ct == "" {
					ct = "application/octet-stream"
				}
				uploads = append(uploads, client.Upload{Name: p, ContentType: ct, Body: f})
			}

			api, err := app.client()
			if err != nil {
				return err
			}
			refs, err := api.UploadFiles(cmd.Context(), uploads)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string][]string{"files": refs})
		},
	}
}

func newFilesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			if err := api.DeleteImage(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"deleted": args[0]})
		},
	}
}
