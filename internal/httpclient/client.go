// Package httpclient provides the JSON-over-HTTP client used by the
// generation and CMS integrations.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response size (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	// UserAgent is the user agent string for HTTP requests
	UserAgent = "dailyreason/1.0"

	// maxErrorMessage bounds how much of an error body is kept on HTTPError
	maxErrorMessage = 512
)

// Client is an interface for HTTP operations
type Client interface {
	// Do sends req and returns the response body. Non-2xx statuses are returned as *HTTPError.
	Do(ctx context.Context, req Request) (*Response, error)
}

// Option configures a DefaultClient
type Option func(*DefaultClient)

// WithTimeout sets the overall client timeout. Zero keeps DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *DefaultClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithBearerToken authenticates every request with a static bearer token
func WithBearerToken(token string) Option {
	return func(c *DefaultClient) {
		c.tokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	}
}

// WithContentType overrides the Content-Type sent with request bodies
func WithContentType(contentType string) Option {
	return func(c *DefaultClient) {
		c.contentType = contentType
	}
}

// WithTransport sets the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(c *DefaultClient) {
		c.transport = rt
	}
}

// DefaultClient is the default HTTP client implementation
type DefaultClient struct {
	client      *http.Client
	timeout     time.Duration
	transport   http.RoundTripper
	tokenSource oauth2.TokenSource
	contentType string
}

// NewDefaultClient creates a new HTTP client
func NewDefaultClient(opts ...Option) *DefaultClient {
	c := &DefaultClient{
		timeout:     DefaultTimeout,
		transport:   http.DefaultTransport,
		contentType: "application/json",
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := c.transport
	if c.tokenSource != nil {
		transport = &oauth2.Transport{Source: c.tokenSource, Base: transport}
	}
	c.client = &http.Client{
		Timeout:   c.timeout,
		Transport: transport,
	}
	return c
}

// Do performs the request
func (c *DefaultClient) Do(ctx context.Context, r Request) (*Response, error) {
	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", c.contentType)
	}
	for name, values := range r.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes (%.2f MB)",
			resp.ContentLength, MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	// +1 to detect if the limit was exceeded
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response size exceeds maximum allowed size of %d bytes (%.2f MB)",
			MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(resp.StatusCode, r.URL, errorMessage(resp.Status, data))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func errorMessage(status string, body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return status
	}
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage] + "..."
	}
	return status + ": " + msg
}
