// Package main is the entry point for the daily reason service.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/dailyreason/dailyreason/cmd/dailyreason/app"
	"github.com/dailyreason/dailyreason/internal/config"
)

// getLogLevel parses the LOG_LEVEL environment variable.
// Defaults to info if unset or invalid.
func getLogLevel() zapcore.Level {
	levelStr := os.Getenv(config.EnvLogLevel)

	switch strings.ToLower(levelStr) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		slog.Warn("Invalid LOG_LEVEL, using INFO", "value", levelStr)
		return zapcore.InfoLevel
	}
}

// traceHandler wraps an slog.Handler to inject OpenTelemetry trace_id and
// span_id into every log record.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

func newLogger() (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(getLogLevel())
	// stdout is reserved for command output
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.EncoderConfig.TimeKey = "time"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapCfg.Build()
}

func main() {
	zl, err := newLogger()
	if err != nil {
		slog.Error("Failed to build logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()

	slog.SetDefault(slog.New(&traceHandler{Handler: zapslog.NewHandler(zl.Core())}))

	if err := app.NewRootCmd().Execute(); err != nil {
		_ = zl.Sync()
		os.Exit(1)
	}
}
