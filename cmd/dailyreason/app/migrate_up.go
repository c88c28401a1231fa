package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dailyreason/dailyreason/database"
)

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		Long: `Apply all pending database migrations to bring the schema up to date.
Connection parameters come from DATABASE_URL and DATABASE_PASSWORD.`,
		RunE: runMigrateUp,
	}
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	connString, proceed, err := setupMigration(cmd, "apply all pending migrations")
	if err != nil || !proceed {
		return err
	}

	slog.Info("Applying database migrations...")
	if err := database.MigrateUp(cmd.Context(), connString); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
