package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/najihhome/rfidrag/api"
	"github.com/najihhome/rfidrag/internal/app"
	"github.com/najihhome/rfidrag/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

The server loads and indexes the approved knowledge base on startup and
answers questions on POST /api/ask. Contributions are accepted on
POST /api/contributions and moderated via the approve/reject endpoints.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("starting application: %w", err)
	}

	if cfg.WatchDataset {
		w := watch.New(cfg.DatasetPath, watch.DefaultDebounce, func(ctx context.Context) {
			if err := a.Knowledge.Reload(ctx); err != nil {
				logger.Error("reload after dataset change failed", "error", err)
			}
		}, logger)

		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("dataset watcher stopped", "error", err)
			}
		}()
	}

	srv := api.NewServer(a.Router, a.Contributions, a.Knowledge, cfg.CORSOrigins, logger)

	return srv.Run(ctx, cfg.ServerAddr)
}
