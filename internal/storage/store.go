// Package storage persists the generated text and the link to its CMS entry.
package storage

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go ReasonStore

// DailyReasonKey is the fixed key of the single row in each table
const DailyReasonKey = "daily_reason"

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// Record is the relational copy of the generated text
type Record struct {
	Key         string    `json:"key"`
	Reason      string    `json:"reason"`
	GeneratedAt time.Time `json:"generated_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntryLink maps a key to the CMS entry created for it
type EntryLink struct {
	Key          string
	ContentfulID string
	UpdatedAt    time.Time
}

// ReasonStore is the relational sink
type ReasonStore interface {
	// UpsertReason inserts or replaces the row for key and returns the stored row
	UpsertReason(ctx context.Context, key, reason string, generatedAt time.Time) (*Record, error)
	// GetReason returns ErrNotFound when no row exists
	GetReason(ctx context.Context, key string) (*Record, error)
	// GetEntryLink returns ErrNotFound when no entry has been linked yet
	GetEntryLink(ctx context.Context, key string) (*EntryLink, error)
	// SaveEntryLink inserts or replaces the linked entry id for key
	SaveEntryLink(ctx context.Context, key, contentfulID string) error
	Ping(ctx context.Context) error
}
