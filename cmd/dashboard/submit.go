package main

import (
	"context"
	"fmt"

	"github.com/distritask/dashboard/internal/infrastructure/intake"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit one task to the intake endpoint and print the reply",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log, err := logger.New(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer log.Sync()

		client := intake.NewClient(intake.ClientConfig{
			BaseURL: cfg.Intake.BaseURL,
			Timeout: cfg.Intake.Timeout,
			Logger:  log,
		})

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Intake.Timeout)
		defer cancel()

		res, err := client.Submit(ctx)
		if err != nil {
			return fmt.Errorf("failed to submit task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", res.ID, res.Message)
		return nil
	},
}
