package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	drapp "github.com/dailyreason/dailyreason/internal/app"
	"github.com/dailyreason/dailyreason/internal/auth"
	"github.com/dailyreason/dailyreason/internal/service"
	"github.com/dailyreason/dailyreason/internal/storage"
	"github.com/dailyreason/dailyreason/internal/sync/coordinator"
)

// runOutput is what `run` prints on success
type runOutput struct {
	Success  bool                   `json:"success"`
	RunID    string                 `json:"run_id"`
	Fallback bool                   `json:"fallback"`
	Data     *storage.Record        `json:"data"`
	CMS      *coordinator.CMSResult `json:"cms,omitempty"`
	CMSError string                 `json:"cms_error,omitempty"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and exit",
		Long: `Generate today's reason, upsert it into Postgres and mirror it to Contentful.

The command exits non-zero only when nothing could be stored. A CMS failure is
reported in the output but does not fail the run.`,
		RunE: runOnce,
	}
	cmd.Flags().Bool("manual", false, "Record the run as a manual invocation instead of an internal one")
	return cmd
}

func runOnce(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	svc, cleanup, err := drapp.NewService(ctx, drapp.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer cleanup()

	trigger := auth.TriggerInternal
	if manual, _ := cmd.Flags().GetBool("manual"); manual {
		trigger = auth.TriggerManual
	}

	result, err := svc.Run(ctx, string(trigger))
	if err != nil {
		return err
	}

	return writeRunResult(cmd, result)
}

func writeRunResult(cmd *cobra.Command, result *service.RunResult) error {
	out := runOutput{
		Success:  true,
		RunID:    result.RunID,
		Fallback: result.Fallback,
		Data:     result.Record,
		CMS:      result.CMS,
	}
	if result.CMSErr != nil {
		out.CMSError = result.CMSErr.Error()
		slog.Warn("CMS sync failed, relational record was stored", "run_id", result.RunID, "error", result.CMSErr)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
