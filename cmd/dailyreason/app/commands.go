// Package app provides the command tree for the daily reason service.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dailyreason/dailyreason/internal/config"
	"github.com/dailyreason/dailyreason/internal/versions"
)

const defaultEnvFile = ".env"

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "dailyreason",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Daily reason generator and dual-sink sync job",
		Long: `dailyreason generates one short sentence per day and stores it in Postgres
and in a Contentful entry. It can run as an HTTP service, on an in-process
schedule, or as a one-shot command.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	rootCmd.PersistentFlags().String("env-file", defaultEnvFile,
		"Dotenv file loaded before reading the environment (ignored when missing)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig resolves configuration once for the invoked command
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, fmt.Errorf("failed to get env-file flag: %w", err)
	}

	var opts []config.Option
	if envFile != "" {
		opts = append(opts, config.WithDotEnv(envFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info: %w", err)
				}
				_, err = fmt.Fprintln(out, string(output))
				return err
			}

			_, err = fmt.Fprintf(out, "dailyreason %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}
