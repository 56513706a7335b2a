package cli

import (
	"os"
	"os/signal"
	"syscall"

	"taskManager/internal/logger"
	"taskManager/internal/worker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh tasks periodically and print new notifications until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := app.refreshWorker(ctx, func(p worker.Pass) {
				for _, n := range p.Emitted {
					if err := writeOut(cmd, app, n); err != nil {
						logger.Warn("CLI: writing notification", zap.Error(err))
					}
				}
			})
			if err != nil {
				return err
			}

			w.Start(ctx)
			return nil
		},
	}
}
