package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ctxpipe/internal/config"
	"ctxpipe/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd(cfgPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the transform HTTP service",
		Long: `Start an HTTP service exposing the configured pipeline:

  POST /api/v1/transform   apply the pipeline to a posted history
  GET  /api/v1/reports     list recent transform-run reports
  GET  /api/v1/health      liveness check

The pipeline is rebuilt when the config file changes on disk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, *logLevel)

			srv, err := server.New(*cfgPath, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}
