package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCMD(cfgPath *string) *cobra.Command {
	var direction string
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if direction != "up" && direction != "down" {
				return fmt.Errorf("direction must be up or down, got %q", direction)
			}
			application, logger, err := bootstrap(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer closeApp(application, logger)

			if err := application.Migrate(cmd.Context(), direction, steps); err != nil {
				return fmt.Errorf("migrate %s: %w", direction, err)
			}
			logger.Info("migration complete", "direction", direction, "steps", steps)
			return nil
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "up", "up or down")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")

	return cmd
}
