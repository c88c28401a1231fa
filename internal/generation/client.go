package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/trace"

	"github.com/dailyreason/dailyreason/internal/config"
	"github.com/dailyreason/dailyreason/internal/httpclient"
	"github.com/dailyreason/dailyreason/internal/otel"
	"github.com/dailyreason/dailyreason/internal/retry"
	"github.com/dailyreason/dailyreason/internal/telemetry"
)

const (
	// DefaultAttempts is how many times a generation is tried
	DefaultAttempts = 3

	// DefaultAttemptTimeout bounds a single attempt
	DefaultAttemptTimeout = 20 * time.Second

	// DefaultBackoffBase is the pause after the first failed attempt; it grows linearly
	DefaultBackoffBase = time.Second

	contentPath = "choices.0.message.content"

	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeTimeout = "timeout"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the outbound HTTP client
func WithHTTPClient(c httpclient.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithAttempts sets the number of attempts
func WithAttempts(n uint) Option {
	return func(cl *Client) {
		cl.attempts = n
	}
}

// WithAttemptTimeout sets the per-attempt deadline
func WithAttemptTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.attemptTimeout = d
	}
}

// WithBackoffBase sets the linear backoff base
func WithBackoffBase(d time.Duration) Option {
	return func(cl *Client) {
		cl.backoffBase = d
	}
}

// WithMetrics records attempt outcomes
func WithMetrics(m *telemetry.GenerationMetrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// WithTracer sets the tracer used for generation spans
func WithTracer(t trace.Tracer) Option {
	return func(cl *Client) {
		cl.tracer = t
	}
}

// Client calls the chat completions API
type Client struct {
	http           httpclient.Client
	endpoint       string
	model          string
	maxTokens      int
	temperature    float64
	attempts       uint
	attemptTimeout time.Duration
	backoffBase    time.Duration
	metrics        *telemetry.GenerationMetrics
	tracer         trace.Tracer
}

var _ Generator = (*Client)(nil)

// NewClient creates a generation client from cfg
func NewClient(cfg config.GenerationConfig, opts ...Option) *Client {
	c := &Client{
		endpoint:       strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions",
		model:          cfg.Model,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		attempts:       DefaultAttempts,
		attemptTimeout: DefaultAttemptTimeout,
		backoffBase:    DefaultBackoffBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewDefaultClient(httpclient.WithBearerToken(cfg.APIKey))
	}
	return c
}

// Generate returns the trimmed content of the first successful attempt.
// When every attempt fails the error matches ErrGenerationFailed and wraps the last failure.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, otel.SpanGenerate)
	defer span.End()

	text, err := retry.Do(ctx, retry.Policy{
		Attempts: c.attempts,
		Base:     c.backoffBase,
		Notify: func(attempt int, err error, next time.Duration) {
			slog.WarnContext(ctx, "Generation attempt failed",
				"attempt", attempt,
				"retry_in", next,
				"error", err,
			)
		},
	}, func(ctx context.Context, attempt int) (string, error) {
		return c.attempt(ctx, attempt, prompt)
	})
	if err != nil {
		otel.Fail(span, otel.StageGenerate, err)
		slog.ErrorContext(ctx, "Generation failed after all retries", "attempts", c.attempts, "error", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	return text, nil
}

func (c *Client) attempt(ctx context.Context, attempt int, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	slog.DebugContext(ctx, "Calling generation endpoint", "attempt", attempt, "prompt_length", len(prompt))

	resp, err := c.http.Do(attemptCtx, httpclient.Request{
		Method: http.MethodPost,
		URL:    c.endpoint,
		Body: chatRequest{
			Model:       c.model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			c.metrics.RecordAttempt(ctx, outcomeTimeout)
			slog.ErrorContext(ctx, "Generation attempt timed out", "attempt", attempt, "timeout", c.attemptTimeout)
			return "", fmt.Errorf("attempt %d timed out after %s: %w", attempt, c.attemptTimeout, err)
		}
		c.metrics.RecordAttempt(ctx, outcomeError)
		return "", fmt.Errorf("attempt %d: %w", attempt, err)
	}

	content := gjson.GetBytes(resp.Body, contentPath)
	text := strings.TrimSpace(content.String())
	if !content.Exists() || text == "" {
		c.metrics.RecordAttempt(ctx, outcomeError)
		return "", fmt.Errorf("attempt %d: %w: %s", attempt, ErrEmptyContent, snippet(resp.Body, 200))
	}

	c.metrics.RecordAttempt(ctx, outcomeSuccess)
	slog.InfoContext(ctx, "Generation succeeded", "attempt", attempt, "length", len(text))
	return text, nil
}

func snippet(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n])
	}
	return string(body)
}
