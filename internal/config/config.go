// Package config provides environment-driven configuration loading for the daily reason service.
//
// Configuration is resolved exactly once per process, before any network I/O, and the
// resulting *Config is passed explicitly to every component that needs it.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dailyreason/dailyreason/internal/telemetry"
)

// Environment variable names.
const (
	EnvDatabaseURL               = "DATABASE_URL"
	EnvDatabasePassword          = "DATABASE_PASSWORD"
	EnvOpenAIAPIKey              = "OPENAI_API_KEY"
	EnvOpenAIBaseURL             = "OPENAI_BASE_URL"
	EnvOpenAIModel               = "OPENAI_MODEL"
	EnvOpenAIMaxTokens           = "OPENAI_MAX_TOKENS"
	EnvOpenAITemperature         = "OPENAI_TEMPERATURE"
	EnvContentfulSpaceID         = "CONTENTFUL_SPACE_ID"
	EnvContentfulEnvironment     = "CONTENTFUL_ENVIRONMENT"
	EnvContentfulContentType     = "CONTENTFUL_CONTENT_TYPE"
	EnvContentfulManagementToken = "CONTENTFUL_MANAGEMENT_TOKEN"
	EnvContentfulBaseURL         = "CONTENTFUL_BASE_URL"
	EnvContentfulLocale          = "CONTENTFUL_LOCALE"
	EnvCronInvokeSecret          = "CRON_INVOKE_SECRET"
	EnvSchedulerTriggerMode      = "SCHEDULER_TRIGGER_MODE"
	EnvScheduleRRule             = "SCHEDULE_RRULE"
	EnvPromptFile                = "PROMPT_FILE"
	EnvFallbackReason            = "FALLBACK_REASON"
	EnvHTTPAddress               = "HTTP_ADDRESS"
	EnvLogLevel                  = "LOG_LEVEL"
	EnvOtelEnabled               = "OTEL_ENABLED"
	EnvOtelEndpoint              = "OTEL_ENDPOINT"
	EnvOtelInsecure              = "OTEL_INSECURE"
	EnvOtelTracingEnabled        = "OTEL_TRACING_ENABLED"
	EnvOtelTracingSampling       = "OTEL_TRACING_SAMPLING"
	EnvOtelMetricsEnabled        = "OTEL_METRICS_ENABLED"
	EnvPrometheusEnabled         = "METRICS_PROMETHEUS_ENABLED"
)

// Defaults for optional settings.
const (
	DefaultContentfulEnvironment = "master"
	DefaultContentfulBaseURL     = "https://api.contentful.com"
	DefaultContentfulLocale      = "en-US"
	DefaultOpenAIBaseURL         = "https://api.openai.com/v1"
	DefaultOpenAIModel           = "gpt-4o-mini"
	DefaultOpenAIMaxTokens       = 120
	DefaultOpenAITemperature     = 0.9
	DefaultHTTPAddress           = ":8080"
	DefaultFallbackReason        = "Hai Ho is a motivated junior frontend developer with strong curiosity."
)

const (
	// SchedulerTriggerRun makes a scheduler-marked invocation run the full pipeline.
	SchedulerTriggerRun = "run"

	// SchedulerTriggerWarm makes a scheduler-marked invocation a no-op keep-warm ping.
	SchedulerTriggerWarm = "warm"
)

// requiredEnv lists the settings without which the process must not start, in check order.
var requiredEnv = []string{
	EnvDatabaseURL,
	EnvDatabasePassword,
	EnvOpenAIAPIKey,
	EnvContentfulSpaceID,
	EnvContentfulContentType,
	EnvContentfulManagementToken,
	EnvCronInvokeSecret,
}

// ErrMissingEnv is matched by every MissingEnvError.
var ErrMissingEnv = errors.New("missing required environment variable")

// MissingEnvError identifies a required environment variable that is absent or empty.
type MissingEnvError struct {
	Name string
}

// Error returns the error message
func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing env: %s", e.Name)
}

// Is reports whether target is ErrMissingEnv
func (*MissingEnvError) Is(target error) bool {
	return target == ErrMissingEnv
}

// Config represents the complete service configuration
type Config struct {
	Database   DatabaseConfig
	Generation GenerationConfig
	Contentful ContentfulConfig
	Invocation InvocationConfig
	Server     ServerConfig
	Schedule   ScheduleConfig
	Telemetry  *telemetry.Config
	LogLevel   string
}

// DatabaseConfig defines the relational store connection settings
type DatabaseConfig struct {
	// URL is a postgres:// connection URL. A password embedded in it is replaced by Password.
	URL string

	// Password is the service credential used to authenticate against the store
	Password string
}

// GenerationConfig defines the text-generation service settings
type GenerationConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64

	// PromptFile optionally points at a YAML prompt profile overriding the built-in one
	PromptFile string

	// FallbackReason is persisted when generation fails after all attempts
	FallbackReason string
}

// ContentfulConfig defines the CMS management API settings
type ContentfulConfig struct {
	SpaceID         string
	Environment     string
	ContentTypeID   string
	ManagementToken string
	BaseURL         string
	Locale          string
}

// InvocationConfig defines how incoming invocations are authenticated and handled
type InvocationConfig struct {
	Secret               string
	SchedulerTriggerMode string
}

// ServerConfig defines HTTP listener settings
type ServerConfig struct {
	Address string
}

// ScheduleConfig defines the optional in-process trigger
type ScheduleConfig struct {
	// RRule is an RFC 5545 recurrence rule; empty disables the in-process scheduler
	RRule string
}

// Option configures how the loader resolves values
type Option func(*loaderConfig) error

type loaderConfig struct {
	values     map[string]string
	skipEnv    bool
	dotEnvPath []string
}

// WithValues supplies explicit values that take precedence over the process environment
func WithValues(values map[string]string) Option {
	return func(cfg *loaderConfig) error {
		if cfg.values == nil {
			cfg.values = make(map[string]string, len(values))
		}
		for k, v := range values {
			cfg.values[k] = v
		}
		return nil
	}
}

// WithoutEnvironment disables reading from the process environment
func WithoutEnvironment() Option {
	return func(cfg *loaderConfig) error {
		cfg.skipEnv = true
		return nil
	}
}

// WithDotEnv loads the given .env files into the process environment before resolving values.
// Files that do not exist are ignored; variables already set are never overridden.
func WithDotEnv(paths ...string) Option {
	return func(cfg *loaderConfig) error {
		cfg.dotEnvPath = append(cfg.dotEnvPath, paths...)
		return nil
	}
}

// Load resolves the configuration and validates it, failing on the first missing required value.
func Load(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(loaderCfg.dotEnvPath); err != nil {
		return nil, err
	}

	v := newViper(loaderCfg)

	for _, name := range requiredEnv {
		if strings.TrimSpace(v.GetString(name)) == "" {
			return nil, &MissingEnvError{Name: name}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:      v.GetString(EnvDatabaseURL),
			Password: v.GetString(EnvDatabasePassword),
		},
		Generation: GenerationConfig{
			APIKey:         v.GetString(EnvOpenAIAPIKey),
			BaseURL:        strings.TrimRight(v.GetString(EnvOpenAIBaseURL), "/"),
			Model:          v.GetString(EnvOpenAIModel),
			MaxTokens:      v.GetInt(EnvOpenAIMaxTokens),
			Temperature:    v.GetFloat64(EnvOpenAITemperature),
			PromptFile:     v.GetString(EnvPromptFile),
			FallbackReason: v.GetString(EnvFallbackReason),
		},
		Contentful: ContentfulConfig{
			SpaceID:         v.GetString(EnvContentfulSpaceID),
			Environment:     v.GetString(EnvContentfulEnvironment),
			ContentTypeID:   v.GetString(EnvContentfulContentType),
			ManagementToken: v.GetString(EnvContentfulManagementToken),
			BaseURL:         strings.TrimRight(v.GetString(EnvContentfulBaseURL), "/"),
			Locale:          v.GetString(EnvContentfulLocale),
		},
		Invocation: InvocationConfig{
			Secret:               v.GetString(EnvCronInvokeSecret),
			SchedulerTriggerMode: strings.ToLower(v.GetString(EnvSchedulerTriggerMode)),
		},
		Server: ServerConfig{
			Address: v.GetString(EnvHTTPAddress),
		},
		Schedule: ScheduleConfig{
			RRule: v.GetString(EnvScheduleRRule),
		},
		Telemetry: &telemetry.Config{
			Enabled:  v.GetBool(EnvOtelEnabled),
			Endpoint: v.GetString(EnvOtelEndpoint),
			Insecure: v.GetBool(EnvOtelInsecure),
			Tracing: &telemetry.TracingConfig{
				Enabled:  v.GetBool(EnvOtelTracingEnabled),
				Sampling: v.GetFloat64(EnvOtelTracingSampling),
			},
			Metrics: &telemetry.MetricsConfig{
				Enabled:           v.GetBool(EnvOtelMetricsEnabled),
				PrometheusEnabled: v.GetBool(EnvPrometheusEnabled),
			},
		},
		LogLevel: v.GetString(EnvLogLevel),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func newViper(loaderCfg *loaderConfig) *viper.Viper {
	v := viper.New()

	v.SetDefault(EnvContentfulEnvironment, DefaultContentfulEnvironment)
	v.SetDefault(EnvContentfulBaseURL, DefaultContentfulBaseURL)
	v.SetDefault(EnvContentfulLocale, DefaultContentfulLocale)
	v.SetDefault(EnvOpenAIBaseURL, DefaultOpenAIBaseURL)
	v.SetDefault(EnvOpenAIModel, DefaultOpenAIModel)
	v.SetDefault(EnvOpenAIMaxTokens, DefaultOpenAIMaxTokens)
	v.SetDefault(EnvOpenAITemperature, DefaultOpenAITemperature)
	v.SetDefault(EnvSchedulerTriggerMode, SchedulerTriggerRun)
	v.SetDefault(EnvHTTPAddress, DefaultHTTPAddress)
	v.SetDefault(EnvFallbackReason, DefaultFallbackReason)
	v.SetDefault(EnvLogLevel, "info")

	if !loaderCfg.skipEnv {
		v.AllowEmptyEnv(false)
		for _, name := range allEnv() {
			// BindEnv only errors when called without a key
			_ = v.BindEnv(name, name)
		}
	}

	for k, val := range loaderCfg.values {
		if val == "" {
			continue
		}
		v.Set(k, val)
	}

	return v
}

func allEnv() []string {
	return append(append([]string{}, requiredEnv...),
		EnvOpenAIBaseURL,
		EnvOpenAIModel,
		EnvOpenAIMaxTokens,
		EnvOpenAITemperature,
		EnvContentfulEnvironment,
		EnvContentfulBaseURL,
		EnvContentfulLocale,
		EnvSchedulerTriggerMode,
		EnvScheduleRRule,
		EnvPromptFile,
		EnvFallbackReason,
		EnvHTTPAddress,
		EnvLogLevel,
		EnvOtelEnabled,
		EnvOtelEndpoint,
		EnvOtelInsecure,
		EnvOtelTracingEnabled,
		EnvOtelTracingSampling,
		EnvOtelMetricsEnabled,
		EnvPrometheusEnabled,
	)
}

func loadDotEnv(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// validate checks value formats after presence has been established
func (c *Config) validate() error {
	if _, err := c.Database.parseURL(); err != nil {
		return err
	}

	switch c.Invocation.SchedulerTriggerMode {
	case SchedulerTriggerRun, SchedulerTriggerWarm:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q",
			EnvSchedulerTriggerMode, SchedulerTriggerRun, SchedulerTriggerWarm, c.Invocation.SchedulerTriggerMode)
	}

	if c.Generation.MaxTokens <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvOpenAIMaxTokens, c.Generation.MaxTokens)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("%s must be between 0 and 2, got %v", EnvOpenAITemperature, c.Generation.Temperature)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

// Presence reports which settings resolved to a non-empty value, without exposing them
func (c *Config) Presence() map[string]bool {
	return map[string]bool{
		EnvDatabaseURL:               c.Database.URL != "",
		EnvDatabasePassword:          c.Database.Password != "",
		EnvOpenAIAPIKey:              c.Generation.APIKey != "",
		EnvContentfulSpaceID:         c.Contentful.SpaceID != "",
		EnvContentfulEnvironment:     c.Contentful.Environment != "",
		EnvContentfulContentType:     c.Contentful.ContentTypeID != "",
		EnvContentfulManagementToken: c.Contentful.ManagementToken != "",
		EnvCronInvokeSecret:          c.Invocation.Secret != "",
	}
}

// SchedulerEnabled reports whether the in-process scheduler should run
func (c *Config) SchedulerEnabled() bool {
	return strings.TrimSpace(c.Schedule.RRule) != ""
}

func (d *DatabaseConfig) parseURL() (*url.URL, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid URL: %w", EnvDatabaseURL, err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("%s must use the postgres:// scheme, got %q", EnvDatabaseURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%s must include a host", EnvDatabaseURL)
	}
	return u, nil
}

// GetConnectionString returns the connection URL with the service credential applied
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	u, err := d.parseURL()
	if err != nil {
		return "", err
	}

	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, d.Password)

	return u.String(), nil
}

// GetMigrationConnectionString returns the connection URL in the form expected by the
// golang-migrate pgx/v5 driver
func (d *DatabaseConfig) GetMigrationConnectionString() (string, error) {
	connString, err := d.GetConnectionString()
	if err != nil {
		return "", err
	}
	_, rest, _ := strings.Cut(connString, "://")
	return "pgx5://" + rest, nil
}

// Redacted returns the connection URL with the password masked, for logging
func (d *DatabaseConfig) Redacted() string {
	u, err := d.parseURL()
	if err != nil {
		return ""
	}
	return u.Redacted()
}
