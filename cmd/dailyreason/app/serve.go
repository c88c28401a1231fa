package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	drapp "github.com/dailyreason/dailyreason/internal/app"
	"github.com/dailyreason/dailyreason/internal/storage"
	"github.com/dailyreason/dailyreason/internal/telemetry"
	"github.com/dailyreason/dailyreason/internal/versions"
)

const telemetryShutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP invocation endpoint",
		Long: `Start the HTTP service that runs the pipeline on authenticated invocations.

Scheduler-marked requests (x-supabase-cron: true) and manual requests
(x-invoke-secret) are accepted on POST / and POST /daily-reason. When
SCHEDULE_RRULE is set, the pipeline also runs on that recurrence in-process.`,
		RunE: runServe,
	}
	cmd.Flags().String("address", "", "Address to listen on (overrides HTTP_ADDRESS)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tel, err := telemetry.New(ctx,
		telemetry.WithTelemetryConfig(cfg.Telemetry),
		telemetry.WithServiceVersion(versions.Version),
		telemetry.WithPipeline(telemetry.Pipeline{
			Key:         storage.DailyReasonKey,
			TriggerMode: cfg.Invocation.SchedulerTriggerMode,
			Schedule:    cfg.Schedule.RRule,
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shut down telemetry", "error", err)
		}
	}()

	opts := []drapp.DailyReasonAppOptions{
		drapp.WithConfig(cfg),
		drapp.WithMeterProvider(tel.MeterProvider()),
		drapp.WithTracerProvider(tel.TracerProvider()),
	}
	if handler := tel.MetricsHandler(); handler != nil {
		opts = append(opts, drapp.WithMetricsHandler(handler))
	}
	if address, _ := cmd.Flags().GetString("address"); address != "" {
		opts = append(opts, drapp.WithAddress(address))
	}

	application, err := drapp.NewDailyReasonApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	slog.Info("Starting daily reason service",
		"version", versions.Version,
		"scheduler", cfg.SchedulerEnabled(),
		"scheduler_trigger_mode", cfg.Invocation.SchedulerTriggerMode,
	)

	return application.Start(ctx)
}
