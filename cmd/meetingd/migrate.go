package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/preetsinghmakkar/meetingsync/internal/repositories"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema for the configured driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := repositories.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			if err := repositories.Migrate(ctx, db, cfg.DatabaseDriver); err != nil {
				return err
			}

			log.Info().Str("driver", cfg.DatabaseDriver).Msg("schema applied")
			return nil
		},
	}
}
