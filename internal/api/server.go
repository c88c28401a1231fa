package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dailyreason/dailyreason/internal/auth"
	"github.com/dailyreason/dailyreason/internal/config"
	"github.com/dailyreason/dailyreason/internal/service"
)

// DefaultRequestTimeout bounds a single request. A full run can spend about a
// minute in generation retries before the CMS phase starts.
const DefaultRequestTimeout = 3 * time.Minute

// ServerOption configures the API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	metricsHandler http.Handler
	schedulerMode  string
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetricsHandler serves h on GET /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// WithSchedulerTriggerMode selects what a scheduler-marked invocation does
func WithSchedulerTriggerMode(mode string) ServerOption {
	return func(cfg *serverConfig) {
		cfg.schedulerMode = mode
	}
}

// NewServer creates the HTTP router. Invocation routes require either the
// scheduler marker or the invoke secret.
func NewServer(svc service.DailyReasonService, secret string, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		schedulerMode: config.SchedulerTriggerRun,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()

	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)
	if cfg.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metricsHandler)
	}

	invoke := invokeHandler(svc, cfg.schedulerMode)
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(secret))
		r.Post("/", invoke)
		r.Post("/daily-reason", invoke)
	})

	return r
}

// DefaultMiddlewares returns the middleware stack applied in front of every route
func DefaultMiddlewares(timeout time.Duration) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		LoggingMiddleware,
	}
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
