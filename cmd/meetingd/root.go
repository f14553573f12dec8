package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/preetsinghmakkar/meetingsync/internal/config"
	"github.com/preetsinghmakkar/meetingsync/internal/logger"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meetingd",
		Short:         "Meeting lifecycle service for provider webhooks",
		Long:          "Receives video provider webhooks, drives meeting status, launches AI agent sessions and hands transcripts to post-processing.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())

	return rootCmd
}

// bootstrap loads configuration and builds the root logger shared by every subcommand.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		File:        cfg.LogFile,
	})
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("initializing logger: %w", err)
	}

	return cfg, log, nil
}
