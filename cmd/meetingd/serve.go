package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/preetsinghmakkar/meetingsync/internal/app"
	"github.com/preetsinghmakkar/meetingsync/internal/repositories"
)

func newServeCmd() *cobra.Command {
	var (
		migrate         bool
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("initializing app: %w", err)
			}

			if migrate {
				if err := repositories.Migrate(ctx, application.DB, cfg.DatabaseDriver); err != nil {
					application.Close(context.Background())
					return err
				}
				log.Info().Str("driver", cfg.DatabaseDriver).Msg("schema applied")
			}

			return application.Run(ctx, shutdownTimeout)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the database schema before serving")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "time allowed for in-flight work on shutdown")

	return cmd
}
