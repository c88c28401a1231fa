// Package contentful is a minimal Contentful Management API client for
// creating, updating and publishing a single entry.
package contentful

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dailyreason/dailyreason/internal/config"
	"github.com/dailyreason/dailyreason/internal/httpclient"
)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the outbound HTTP client
func WithHTTPClient(c httpclient.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// Client talks to one space environment
type Client struct {
	http          httpclient.Client
	entriesURL    string
	contentTypeID string
	locale        string
}

var _ EntryClient = (*Client)(nil)

// NewClient creates a client for the space and environment in cfg
func NewClient(cfg config.ContentfulConfig, opts ...Option) *Client {
	c := &Client{
		entriesURL: fmt.Sprintf("%s/spaces/%s/environments/%s/entries",
			cfg.BaseURL, url.PathEscape(cfg.SpaceID), url.PathEscape(cfg.Environment)),
		contentTypeID: cfg.ContentTypeID,
		locale:        cfg.Locale,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewDefaultClient(
			httpclient.WithBearerToken(cfg.ManagementToken),
			httpclient.WithContentType(ContentType),
		)
	}
	return c
}

// GetEntry fetches an entry. A 404 is reported as ErrEntryNotFound.
func (c *Client) GetEntry(ctx context.Context, id string) (*Entry, error) {
	entry, err := c.do(ctx, http.MethodGet, c.entryURL(id), nil, nil)
	if err != nil {
		if httpclient.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch entry %s: %w", id, err)
	}
	return entry, nil
}

// CreateEntry creates an entry of the configured content type
func (c *Client) CreateEntry(ctx context.Context, fields Fields) (*Entry, error) {
	header := http.Header{}
	header.Set(HeaderContentType, c.contentTypeID)

	entry, err := c.do(ctx, http.MethodPost, c.entriesURL, header, c.payload(fields))
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	if entry.Sys.ID == "" {
		return nil, errors.New("failed to create entry: response has no sys.id")
	}
	return entry, nil
}

// UpdateEntry replaces the fields of an entry at the given version
func (c *Client) UpdateEntry(ctx context.Context, id string, version int, fields Fields) (*Entry, error) {
	entry, err := c.do(ctx, http.MethodPut, c.entryURL(id), versionHeader(version), c.payload(fields))
	if err != nil {
		return nil, fmt.Errorf("failed to update entry %s: %w", id, err)
	}
	return entry, nil
}

// PublishEntry publishes the given version of an entry
func (c *Client) PublishEntry(ctx context.Context, id string, version int) (*Entry, error) {
	entry, err := c.do(ctx, http.MethodPut, c.entryURL(id)+"/published", versionHeader(version), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to publish entry %s: %w", id, err)
	}
	return entry, nil
}

func (c *Client) entryURL(id string) string {
	return c.entriesURL + "/" + url.PathEscape(id)
}

func (c *Client) payload(fields Fields) map[string]any {
	return map[string]any{
		"fields": map[string]any{
			"title": map[string]string{c.locale: fields.Title},
			"body":  map[string]string{c.locale: fields.Body},
		},
	}
}

func (c *Client) do(ctx context.Context, method, target string, header http.Header, body any) (*Entry, error) {
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: method,
		URL:    target,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(resp.Body, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode entry: %w", err)
	}
	return &entry, nil
}

func versionHeader(version int) http.Header {
	header := http.Header{}
	header.Set(HeaderVersion, strconv.Itoa(version))
	return header
}
