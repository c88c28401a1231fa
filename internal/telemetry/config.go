// Package telemetry wires OpenTelemetry for the daily reason service: an OTLP
// trace pipeline, OTLP and Prometheus metric readers, HTTP middleware and the
// pipeline instruments.
package telemetry

import "fmt"

const (
	// DefaultServiceName is reported as service.name
	DefaultServiceName = "dailyreason"

	// DefaultEndpoint is the OTLP/HTTP collector address
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling applies to requests that are not pipeline runs
	DefaultSampling = 0.05
)

// Config selects which signals are exported and where
type Config struct {
	Enabled  bool
	Endpoint string
	// Insecure sends OTLP over plain HTTP
	Insecure bool
	Tracing  *TracingConfig
	Metrics  *MetricsConfig
}

// TracingConfig controls span export
type TracingConfig struct {
	Enabled bool
	// Sampling is the ratio for health, readiness and other non-pipeline traces.
	// Pipeline runs are always sampled. Zero means DefaultSampling.
	Sampling float64
}

// MetricsConfig controls metric export
type MetricsConfig struct {
	Enabled bool
	// PrometheusEnabled adds a pull reader served on /metrics
	PrometheusEnabled bool
}

func (c *Config) endpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

func (c *Config) tracingEnabled() bool {
	return c != nil && c.Enabled && c.Tracing != nil && c.Tracing.Enabled
}

func (c *Config) metricsEnabled() bool {
	return c != nil && c.Enabled && c.Metrics != nil && c.Metrics.Enabled
}

func (c *Config) prometheusEnabled() bool {
	return c.metricsEnabled() && c.Metrics.PrometheusEnabled
}

// ratio returns the sampling ratio for non-pipeline traces
func (t *TracingConfig) ratio() float64 {
	if t == nil || t.Sampling == 0 {
		return DefaultSampling
	}
	return t.Sampling
}

// Validate checks the enabled parts of the configuration
func (c *Config) Validate() error {
	if !c.tracingEnabled() {
		return nil
	}
	if s := c.Tracing.Sampling; s < 0 || s > 1 {
		return fmt.Errorf("tracing: sampling must be between 0.0 and 1.0, got %g", s)
	}
	return nil
}
