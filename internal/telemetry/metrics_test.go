package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewSyncMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewSyncMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("nil metrics are a no-op", func(t *testing.T) {
		t.Parallel()

		var metrics *SyncMetrics
		metrics.RecordPhaseDuration(context.Background(), PhaseRelational, time.Second, true)
		metrics.RecordCMSAction(context.Background(), "created")
	})
}

func TestSyncMetrics_Record(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewSyncMetrics(mp)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()
	metrics.RecordPhaseDuration(ctx, PhaseRelational, 150*time.Millisecond, true)
	metrics.RecordPhaseDuration(ctx, PhaseCMS, 2*time.Second, false)
	metrics.RecordCMSAction(ctx, "updated")
	metrics.RecordCMSAction(ctx, "updated")

	collected := collect(t, reader)

	durations, ok := collected["dailyreason_sync_phase_duration_seconds"]
	require.True(t, ok)
	hist, ok := durations.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)

	actions, ok := collected["dailyreason_cms_entry_actions_total"]
	require.True(t, ok)
	sum, ok := actions.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
	action, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("action"))
	require.True(t, ok)
	assert.Equal(t, "updated", action.AsString())
}

func TestGenerationMetrics_RecordAttempt(t *testing.T) {
	t.Parallel()

	var nilMetrics *GenerationMetrics
	nilMetrics.RecordAttempt(context.Background(), "success")

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewGenerationMetrics(mp)
	require.NoError(t, err)

	metrics.RecordAttempt(context.Background(), "timeout")
	metrics.RecordAttempt(context.Background(), "success")

	collected := collect(t, reader)
	attempts, ok := collected["dailyreason_generation_attempts_total"]
	require.True(t, ok)
	sum, ok := attempts.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, sum.DataPoints, 2)
}
