package telemetry

import (
	"fmt"
	"net/http"
	"strings"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/dailyreason/dailyreason/internal/otel"
)

// invocationSpans are the server span names the tracing middleware starts for
// the invoke routes, before chi resolves the pattern.
var invocationSpans = map[string]bool{
	http.MethodPost + " /":             true,
	http.MethodPost + " /daily-reason": true,
}

type pipelineSampler struct {
	ratio    float64
	fallback sdktrace.Sampler
}

// NewPipelineSampler samples every pipeline run, whether it starts from an
// HTTP invocation or the in-process schedule, and samples other roots
// (health checks, scrapes) at ratio.
func NewPipelineSampler(ratio float64) sdktrace.Sampler {
	return pipelineSampler{ratio: ratio, fallback: sdktrace.TraceIDRatioBased(ratio)}
}

func (s pipelineSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	if isPipelineRoot(p.Name) {
		return sdktrace.SamplingResult{
			Decision:   sdktrace.RecordAndSample,
			Tracestate: trace.SpanContextFromContext(p.ParentContext).TraceState(),
		}
	}
	return s.fallback.ShouldSample(p)
}

func (s pipelineSampler) Description() string {
	return fmt.Sprintf("PipelineSampler{other=%g}", s.ratio)
}

func isPipelineRoot(name string) bool {
	if name == otel.SpanRun {
		return true
	}
	return invocationSpans[strings.TrimSuffix(name, "/")] || invocationSpans[name]
}
