package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dailyreason/dailyreason/internal/api"
	"github.com/dailyreason/dailyreason/internal/config"
	"github.com/dailyreason/dailyreason/internal/contentful"
	"github.com/dailyreason/dailyreason/internal/db"
	"github.com/dailyreason/dailyreason/internal/generation"
	"github.com/dailyreason/dailyreason/internal/scheduler"
	"github.com/dailyreason/dailyreason/internal/service"
	"github.com/dailyreason/dailyreason/internal/storage"
	"github.com/dailyreason/dailyreason/internal/sync/coordinator"
	"github.com/dailyreason/dailyreason/internal/telemetry"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = api.DefaultRequestTimeout + 15*time.Second
	defaultIdleTimeout  = 60 * time.Second

	tracerName = "github.com/dailyreason/dailyreason"
)

// DailyReasonAppOptions is a function that configures the app builder
type DailyReasonAppOptions func(*dailyReasonAppConfig) error

// dailyReasonAppConfig collects everything needed to build a DailyReasonApp.
// Components left nil are built from config.
type dailyReasonAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	store     storage.ReasonStore
	generator generation.Generator
	cms       contentful.EntryClient

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...DailyReasonAppOptions) (*dailyReasonAppConfig, error) {
	cfg := &dailyReasonAppConfig{
		requestTimeout: api.DefaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.address == "" {
		cfg.address = cfg.config.Server.Address
	}

	return cfg, nil
}

// NewDailyReasonApp builds the HTTP server, the pipeline and, when a schedule is configured, the scheduler
func NewDailyReasonApp(ctx context.Context, opts ...DailyReasonAppOptions) (*DailyReasonApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.config.SchedulerEnabled() {
		components.Scheduler, err = scheduler.New(cfg.config.Schedule.RRule, components.Service)
		if err != nil {
			components.close()
			return nil, fmt.Errorf("failed to build scheduler: %w", err)
		}
		slog.Info("In-process scheduler enabled", "rule", cfg.config.Schedule.RRule)
	}

	httpServer, err := buildHTTPServer(cfg, components.Service)
	if err != nil {
		components.close()
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	return &DailyReasonApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		done:       make(chan struct{}),
	}, nil
}

// NewService builds only the pipeline, for one-shot commands. The returned
// function releases the database connection.
func NewService(ctx context.Context, opts ...DailyReasonAppOptions) (service.DailyReasonService, func(), error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return components.Service, components.close, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) DailyReasonAppOptions {
	return func(cfg *dailyReasonAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address, overriding the configured one
func WithAddress(addr string) DailyReasonAppOptions {
	return func(cfg *dailyReasonAppConfig) error {
		if err := validateAddress(addr); err != nil {
			return err
		}
		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) DailyReasonAppOptions {
	return func(cfg *dailyReasonAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithReasonStore injects the relational store instead of connecting to Postgres
func WithReasonStore(s storage.ReasonStore) DailyReasonAppOptions {
	return func(cfg *dailyReasonAppConfig) error {
		cfg.store = s
		return nil
	}
}

// WithGenerator injects the text generator
func WithGenerator(g generation.Generator) DailyReasonAppOptions {
	return func(cfg *dailyReasonAppConfig) error {
		cfg.generator = g
		return nil
	}
}

// WithEntryClient injects the CMS client
func WithEntryClient(c contentful.EntryClient) DailyReasonAppOptions {
	return func(cfg *dailyReasonAppConfig) error {
		cfg.cms = c
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for pipeline and HTTP metrics
func WithMeterProvider(mp metric.MeterProvider) DailyReasonAppOptions {
	return func(cfg *dailyReasonAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) DailyReasonAppOptions {
	return func(cfg *dailyReasonAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves the Prometheus scrape handler on /metrics
func WithMetricsHandler(h http.Handler) DailyReasonAppOptions {
	return func(cfg *dailyReasonAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

func validateAddress(addr string) error {
	if addr == "" {
		return errors.New("address cannot be empty")
	}

	host, port, found := strings.Cut(addr, ":")
	if !found || port == "" {
		return fmt.Errorf("address is not a valid port: %s", addr)
	}
	if host == "localhost" {
		host = "127.0.0.1"
	}
	if host == "" {
		host = "0.0.0.0"
	}

	if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
		return fmt.Errorf("address is not a valid port: %w", err)
	}
	return nil
}

func (c *AppComponents) close() {
	if c.Database != nil {
		c.Database.Close()
	}
}

// buildComponents builds the store, clients, coordinator and service
func buildComponents(ctx context.Context, b *dailyReasonAppConfig) (*AppComponents, error) {
	slog.Info("Initializing pipeline components")

	var tracer trace.Tracer
	if b.tracerProvider != nil {
		tracer = b.tracerProvider.Tracer(tracerName)
	}

	components := &AppComponents{}

	store := b.store
	if store == nil {
		conn, err := db.NewConnection(ctx, &b.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		components.Database = conn
		store = storage.NewPostgresStore(conn.Pool, storage.WithTracer(tracer))
	}

	svc, err := buildService(b, store, tracer)
	if err != nil {
		components.close()
		return nil, err
	}
	components.Service = svc

	slog.Info("Pipeline components initialized successfully")
	return components, nil
}

func buildService(b *dailyReasonAppConfig, store storage.ReasonStore, tracer trace.Tracer) (service.DailyReasonService, error) {
	syncMetrics, err := telemetry.NewSyncMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	generator := b.generator
	if generator == nil {
		genMetrics, err := telemetry.NewGenerationMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create generation metrics: %w", err)
		}
		generator = generation.NewClient(b.config.Generation,
			generation.WithMetrics(genMetrics),
			generation.WithTracer(tracer))
	}

	cms := b.cms
	if cms == nil {
		cms = contentful.NewClient(b.config.Contentful)
	}

	coord := coordinator.New(store, cms,
		coordinator.WithSyncMetrics(syncMetrics),
		coordinator.WithTracer(tracer))

	prompt, err := generation.ResolvePrompt(b.config.Generation.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt: %w", err)
	}

	svc, err := service.New(generator, coord, store, prompt, b.config.Generation.FallbackReason,
		service.WithTracer(tracer))
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(b *dailyReasonAppConfig, svc service.DailyReasonService) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = api.DefaultMiddlewares(b.requestTimeout)
	}

	if b.tracerProvider != nil {
		b.middlewares = append([]func(http.Handler) http.Handler{telemetry.TracingMiddleware(b.tracerProvider)}, b.middlewares...)
	}

	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		if metricsMiddleware != nil {
			// First in the chain so rejected invocations are counted too
			b.middlewares = append([]func(http.Handler) http.Handler{metricsMiddleware}, b.middlewares...)
			slog.Info("HTTP metrics middleware enabled")
		}
	}

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(b.middlewares...),
		api.WithSchedulerTriggerMode(b.config.Invocation.SchedulerTriggerMode),
	}
	if b.metricsHandler != nil {
		serverOpts = append(serverOpts, api.WithMetricsHandler(b.metricsHandler))
	}
	router := api.NewServer(svc, b.config.Invocation.Secret, serverOpts...)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
