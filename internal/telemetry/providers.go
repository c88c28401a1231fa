package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// metricsExportInterval is how often the OTLP reader pushes
const metricsExportInterval = time.Minute

// Resource attribute keys describing which pipeline this process runs.
const (
	ResourceReasonKey   = attribute.Key("dailyreason.key")
	ResourceTriggerMode = attribute.Key("dailyreason.scheduler_trigger_mode")
	ResourceScheduled   = attribute.Key("dailyreason.scheduled")
)

// Pipeline describes the job this process runs. It is attached to every span
// and metric as resource attributes.
type Pipeline struct {
	// Key is the logical key of the synced row
	Key string
	// TriggerMode is what a scheduler-marked invocation does (run or warm)
	TriggerMode string
	// Schedule is the in-process RRULE, empty when the process only answers HTTP
	Schedule string
}

func (p Pipeline) attributes() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if p.Key != "" {
		attrs = append(attrs, ResourceReasonKey.String(p.Key))
	}
	if p.TriggerMode != "" {
		attrs = append(attrs, ResourceTriggerMode.String(p.TriggerMode))
	}
	return append(attrs, ResourceScheduled.Bool(p.Schedule != ""))
}

func newResource(ctx context.Context, version string, pipeline Pipeline) (*resource.Resource, error) {
	attrs := append([]attribute.KeyValue{
		semconv.ServiceName(DefaultServiceName),
		semconv.ServiceVersion(version),
	}, pipeline.attributes()...)

	res, err := resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// newTracerProvider exports spans over OTLP/HTTP. Pipeline runs are always
// sampled; other root spans use the configured ratio.
func newTracerProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.endpoint())}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(NewPipelineSampler(cfg.Tracing.ratio()))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("Tracing initialized",
		"endpoint", cfg.endpoint(),
		"other_traces_ratio", cfg.Tracing.ratio(),
		"insecure", cfg.Insecure,
	)
	return tp, nil
}

// newMeterProvider pushes metrics over OTLP/HTTP and, when reg is non-nil,
// also registers a Prometheus reader with it.
func newMeterProvider(
	ctx context.Context, cfg *Config, res *resource.Resource, reg prometheus.Registerer,
) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.endpoint())}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	providerOpts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricsExportInterval))),
	}
	if reg != nil {
		reader, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus reader: %w", err)
		}
		providerOpts = append(providerOpts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(providerOpts...)
	otel.SetMeterProvider(mp)

	slog.Info("Metrics initialized",
		"endpoint", cfg.endpoint(),
		"prometheus", reg != nil,
	)
	return mp, nil
}
