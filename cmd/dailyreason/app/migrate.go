package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dailyreason/dailyreason/database"
	"github.com/dailyreason/dailyreason/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool",
		Long:  `Database migration tool for managing schema versions. Use with 'up' or 'down' subcommands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	cmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to all questions")

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateVersionCmd())
	return cmd
}

// setupMigration loads configuration and asks for confirmation unless --yes was given.
// A false return with a nil error means the user declined.
func setupMigration(cmd *cobra.Command, action string) (string, bool, error) {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return "", false, fmt.Errorf("failed to get yes flag: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", false, err
	}

	connString, err := cfg.Database.GetMigrationConnectionString()
	if err != nil {
		return "", false, fmt.Errorf("failed to get migration connection string: %w", err)
	}

	if !yes {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), action, &cfg.Database)
		if err != nil || !ok {
			return "", false, err
		}
	}
	return connString, true, nil
}

func confirm(in io.Reader, out io.Writer, action string, db *config.DatabaseConfig) (bool, error) {
	if _, err := fmt.Fprintf(out, "About to %s on %s. Continue? (yes/no): ", action, db.Redacted()); err != nil {
		return false, err
	}

	var response string
	if _, err := fmt.Fscanln(in, &response); err != nil {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes", "y":
		return true, nil
	default:
		slog.Info("Migration cancelled by user")
		return false, nil
	}
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			connString, err := cfg.Database.GetMigrationConnectionString()
			if err != nil {
				return fmt.Errorf("failed to get migration connection string: %w", err)
			}

			version, dirty, err := database.Version(connString)
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return err
		},
	}
}
