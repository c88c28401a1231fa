package contentful

import (
	"context"
	"errors"
)

//go:generate mockgen -destination=mocks/mock_entry_client.go -package=mocks -source=types.go EntryClient

// ContentType is the media type the Management API expects for entry payloads
const ContentType = "application/vnd.contentful.management.v1+json"

// Header names used by the Management API
const (
	HeaderVersion     = "X-Contentful-Version"
	HeaderContentType = "X-Contentful-Content-Type"
)

// ErrEntryNotFound is returned by GetEntry when the entry does not exist
var ErrEntryNotFound = errors.New("contentful entry not found")

// Sys is the system metadata of an entry
type Sys struct {
	ID               string `json:"id"`
	Type             string `json:"type,omitempty"`
	Version          int    `json:"version"`
	PublishedVersion int    `json:"publishedVersion,omitempty"`
}

// Entry is a Management API entry. Fields are keyed by field id, then locale.
type Entry struct {
	Sys    Sys                       `json:"sys"`
	Fields map[string]map[string]any `json:"fields,omitempty"`
}

// Field returns the value of field in locale as a string
func (e *Entry) Field(field, locale string) string {
	if e == nil {
		return ""
	}
	v, _ := e.Fields[field][locale].(string)
	return v
}

// Fields are the values written to an entry
type Fields struct {
	Title string
	Body  string
}

// EntryClient is the subset of the Management API the sync job uses.
// Each call is a single request; callers decide on retries.
type EntryClient interface {
	GetEntry(ctx context.Context, id string) (*Entry, error)
	CreateEntry(ctx context.Context, fields Fields) (*Entry, error)
	UpdateEntry(ctx context.Context, id string, version int, fields Fields) (*Entry, error)
	PublishEntry(ctx context.Context, id string, version int) (*Entry, error)
}
