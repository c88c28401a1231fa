package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the dual-sink sync meter
	SyncMetricsMeterName = "github.com/dailyreason/dailyreason/sync"

	// GenerationMetricsMeterName is the name used for the text-generation meter
	GenerationMetricsMeterName = "github.com/dailyreason/dailyreason/generation"
)

// Phase labels recorded on sync metrics.
const (
	PhaseRelational = "relational"
	PhaseCMS        = "cms"
)

// SyncMetrics holds the OpenTelemetry instruments for sync operations
type SyncMetrics struct {
	phaseDuration metric.Float64Histogram
	cmsActions    metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	phaseDuration, err := meter.Float64Histogram(
		"dailyreason_sync_phase_duration_seconds",
		metric.WithDescription("Duration of each sync phase in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	cmsActions, err := meter.Int64Counter(
		"dailyreason_cms_entry_actions_total",
		metric.WithDescription("CMS entry mutations by action (created, updated, recreated)"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		phaseDuration: phaseDuration,
		cmsActions:    cmsActions,
	}, nil
}

// RecordPhaseDuration records how long a sync phase took and whether it succeeded
func (m *SyncMetrics) RecordPhaseDuration(ctx context.Context, phase string, duration time.Duration, success bool) {
	if m == nil || m.phaseDuration == nil {
		return
	}

	m.phaseDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.Bool("success", success),
	))
}

// RecordCMSAction counts a successful CMS create/update
func (m *SyncMetrics) RecordCMSAction(ctx context.Context, action string) {
	if m == nil || m.cmsActions == nil {
		return
	}

	m.cmsActions.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

// GenerationMetrics holds the OpenTelemetry instruments for the generation client
type GenerationMetrics struct {
	attempts metric.Int64Counter
}

// NewGenerationMetrics creates a new GenerationMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewGenerationMetrics(provider metric.MeterProvider) (*GenerationMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	attempts, err := provider.Meter(GenerationMetricsMeterName).Int64Counter(
		"dailyreason_generation_attempts_total",
		metric.WithDescription("Text-generation attempts by outcome (success, error, timeout)"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return &GenerationMetrics{attempts: attempts}, nil
}

// RecordAttempt counts one generation attempt with its outcome
func (m *GenerationMetrics) RecordAttempt(ctx context.Context, outcome string) {
	if m == nil || m.attempts == nil {
		return
	}

	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
