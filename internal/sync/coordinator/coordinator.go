package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dailyreason/dailyreason/internal/contentful"
	"github.com/dailyreason/dailyreason/internal/otel"
	"github.com/dailyreason/dailyreason/internal/storage"
	"github.com/dailyreason/dailyreason/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_coordinator.go -package=mocks -source=coordinator.go Coordinator

const (
	// DefaultCMSAttempts is the number of tries for each CMS mutation
	DefaultCMSAttempts = 3
	// DefaultCMSBackoffBase is the linear backoff base between CMS tries
	DefaultCMSBackoffBase = 800 * time.Millisecond
)

// Action describes what happened to the CMS entry during a sync
type Action string

const (
	// ActionCreated means no entry was linked and a new one was created
	ActionCreated Action = "created"
	// ActionUpdated means the linked entry was updated in place
	ActionUpdated Action = "updated"
	// ActionRecreated means the linked entry was gone and a replacement was created
	ActionRecreated Action = "recreated"
)

// CMSResult is the outcome of a successful CMS phase
type CMSResult struct {
	EntryID          string `json:"entry_id"`
	Version          int    `json:"version"`
	PublishedVersion int    `json:"published_version,omitempty"`
	Action           Action `json:"action"`
}

// Result is the outcome of a sync. Record is always set when Sync returns no
// error. Exactly one of CMS and CMSErr is set.
type Result struct {
	Record *storage.Record
	CMS    *CMSResult
	CMSErr error
}

// Coordinator writes a reason to the relational store and mirrors it into the CMS
type Coordinator interface {
	// Sync runs the relational phase and then the CMS phase. Only a relational
	// failure is returned as an error; CMS failures land in Result.CMSErr.
	Sync(ctx context.Context, reason string) (*Result, error)
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	store storage.ReasonStore
	cms   contentful.EntryClient
	key   string
	now   func() time.Time

	cmsAttempts    uint
	cmsBackoffBase time.Duration

	syncMetrics *telemetry.SyncMetrics
	tracer      trace.Tracer
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithClock sets the clock used for the generation timestamp and entry title
func WithClock(now func() time.Time) Option {
	return func(c *defaultCoordinator) {
		c.now = now
	}
}

// WithKey overrides the row key used in both tables
func WithKey(key string) Option {
	return func(c *defaultCoordinator) {
		c.key = key
	}
}

// WithCMSRetry sets the attempt count and backoff base for CMS mutations
func WithCMSRetry(attempts uint, base time.Duration) Option {
	return func(c *defaultCoordinator) {
		c.cmsAttempts = attempts
		c.cmsBackoffBase = base
	}
}

// WithSyncMetrics sets the sync metrics for the coordinator
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(c *defaultCoordinator) {
		c.syncMetrics = metrics
	}
}

// WithTracer sets the tracer for sync spans
func WithTracer(tracer trace.Tracer) Option {
	return func(c *defaultCoordinator) {
		c.tracer = tracer
	}
}

// New creates a new coordinator with injected dependencies
func New(store storage.ReasonStore, cms contentful.EntryClient, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		store:          store,
		cms:            cms,
		key:            storage.DailyReasonKey,
		now:            time.Now,
		cmsAttempts:    DefaultCMSAttempts,
		cmsBackoffBase: DefaultCMSBackoffBase,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Title returns the entry title for a run at t
func Title(t time.Time) string {
	return "#" + t.UTC().Format(time.DateOnly)
}

// Sync implements Coordinator
func (c *defaultCoordinator) Sync(ctx context.Context, reason string) (*Result, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, otel.SpanSync,
		trace.WithAttributes(otel.AttrReasonKey.String(c.key)))
	defer span.End()

	now := c.now().UTC()

	start := time.Now()
	record, err := c.store.UpsertReason(ctx, c.key, reason, now)
	c.syncMetrics.RecordPhaseDuration(ctx, telemetry.PhaseRelational, time.Since(start), err == nil)
	if err != nil {
		otel.Fail(span, otel.StageUpsert, err)
		slog.ErrorContext(ctx, "Relational upsert failed", "key", c.key, "error", err)
		return nil, fmt.Errorf("failed to upsert reason: %w", err)
	}
	slog.InfoContext(ctx, "Relational record upserted", "key", record.Key, "generated_at", record.GeneratedAt)

	result := &Result{Record: record}

	start = time.Now()
	cms, err := c.syncCMS(ctx, reason, now)
	c.syncMetrics.RecordPhaseDuration(ctx, telemetry.PhaseCMS, time.Since(start), err == nil)
	if err != nil {
		result.CMSErr = err
		span.SetAttributes(otel.AttrCMSSynced.Bool(false))
		slog.ErrorContext(ctx, "CMS sync failed, relational record kept", "key", c.key, "error", err)
		return result, nil
	}

	result.CMS = cms
	span.SetAttributes(
		otel.AttrCMSSynced.Bool(true),
		otel.AttrEntryID.String(cms.EntryID),
		otel.AttrEntryVersion.Int(cms.Version),
		otel.AttrEntryAction.String(string(cms.Action)),
	)
	slog.InfoContext(ctx, "CMS entry published",
		"entry_id", cms.EntryID,
		"version", cms.Version,
		"action", cms.Action)

	return result, nil
}
