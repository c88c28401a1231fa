package app

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/dailyreason/dailyreason/database"
)

func newMigrateDownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Migrate the database down",
		Long: `Migrate the database schema down by reverting migrations.
WARNING: This operation can result in data loss. Use with caution.

Examples:
  # Migrate down by 1 step
  dailyreason migrate down --num-steps 1 --yes

  # Migrate down all the way (WARNING: destroys all data)
  dailyreason migrate down --yes`,
		RunE: runMigrateDown,
	}
	cmd.Flags().UintP("num-steps", "n", 0, "Number of steps to migrate down (0 = all)")
	return cmd
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}
	if numSteps > math.MaxInt32 {
		return fmt.Errorf("num-steps %d is too large", numSteps)
	}

	action := "revert all migrations"
	if numSteps > 0 {
		action = fmt.Sprintf("revert %d migration(s)", numSteps)
	}

	connString, proceed, err := setupMigration(cmd, action)
	if err != nil || !proceed {
		return err
	}

	slog.Info("Reverting database migrations...", "steps", numSteps)
	if err := database.MigrateDown(cmd.Context(), connString, int(numSteps)); err != nil {
		return fmt.Errorf("failed to revert migrations: %w", err)
	}

	return nil
}
