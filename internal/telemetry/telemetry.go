package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Telemetry owns the providers for one process and shuts them down together.
type Telemetry struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	promRegistry   *prometheus.Registry
}

// Option configures New
type Option func(*options)

type options struct {
	config         *Config
	serviceVersion string
	pipeline       Pipeline
}

// WithTelemetryConfig sets the telemetry configuration
func WithTelemetryConfig(cfg *Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithServiceVersion sets service.version
func WithServiceVersion(version string) Option {
	return func(o *options) {
		o.serviceVersion = version
	}
}

// WithPipeline describes the job this process runs on the shared resource
func WithPipeline(p Pipeline) Option {
	return func(o *options) {
		o.pipeline = p
	}
}

// New builds the tracer and meter providers selected by the configuration.
// Signals that are disabled get no-op providers. The caller must call Shutdown.
func New(ctx context.Context, opts ...Option) (*Telemetry, error) {
	o := &options{serviceVersion: "dev"}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.config
	t := &Telemetry{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	if !cfg.tracingEnabled() && !cfg.metricsEnabled() {
		slog.Debug("Telemetry disabled")
		return t, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	res, err := newResource(ctx, o.serviceVersion, o.pipeline)
	if err != nil {
		return nil, err
	}

	slog.Info("Initializing telemetry",
		"service_version", o.serviceVersion,
		"reason_key", o.pipeline.Key,
		"trigger_mode", o.pipeline.TriggerMode,
		"scheduled", o.pipeline.Schedule != "",
	)

	if cfg.tracingEnabled() {
		tp, err := newTracerProvider(ctx, cfg, res)
		if err != nil {
			return nil, fmt.Errorf("failed to create tracer provider: %w", err)
		}
		t.tracerProvider = tp
	}

	if cfg.metricsEnabled() {
		var reg prometheus.Registerer
		if cfg.prometheusEnabled() {
			t.promRegistry = prometheus.NewRegistry()
			reg = t.promRegistry
		}
		mp, err := newMeterProvider(ctx, cfg, res, reg)
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create meter provider: %w", err)
		}
		t.meterProvider = mp
	}

	return t, nil
}

// TracerProvider returns the configured tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// MeterProvider returns the configured meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// Tracer returns a named tracer from the tracer provider
func (t *Telemetry) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return t.tracerProvider.Tracer(name, opts...)
}

// MetricsHandler serves the Prometheus registry, or returns nil when the
// Prometheus reader is off.
func (t *Telemetry) MetricsHandler() http.Handler {
	if t.promRegistry == nil {
		return nil
	}
	return promhttp.HandlerFor(t.promRegistry, promhttp.HandlerOpts{})
}

// Shutdown flushes pending spans and metrics. No-op providers are skipped.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if tp, ok := t.tracerProvider.(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	if mp, ok := t.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
