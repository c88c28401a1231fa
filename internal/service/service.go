// Package service runs the daily pipeline: generate a reason, then sync it to both sinks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/dailyreason/dailyreason/internal/generation"
	"github.com/dailyreason/dailyreason/internal/otel"
	"github.com/dailyreason/dailyreason/internal/storage"
	"github.com/dailyreason/dailyreason/internal/sync/coordinator"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go DailyReasonService

// ErrNoFallback is returned by New when no fallback reason is configured
var ErrNoFallback = errors.New("fallback reason must not be empty")

// RunResult is the outcome of one pipeline run
type RunResult struct {
	RunID    string
	Fallback bool
	Record   *storage.Record
	CMS      *coordinator.CMSResult
	CMSErr   error
}

// Status is the stored state of both sinks
type Status struct {
	Record *storage.Record
	// Link is nil when no CMS entry has been created yet
	Link *storage.EntryLink
}

// DailyReasonService defines the pipeline operations
type DailyReasonService interface {
	// Run generates a reason and syncs it. trigger is recorded on logs and spans.
	// An error means nothing was stored.
	Run(ctx context.Context, trigger string) (*RunResult, error)

	// Status returns the current relational record and CMS link
	Status(ctx context.Context) (*Status, error)

	// CheckReadiness checks that the relational store is reachable
	CheckReadiness(ctx context.Context) error
}

type dailyReasonService struct {
	generator   generation.Generator
	coordinator coordinator.Coordinator
	store       storage.ReasonStore
	prompt      string
	fallback    string
	tracer      trace.Tracer
}

// Option configures the service
type Option func(*dailyReasonService)

// WithTracer sets the tracer for run spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *dailyReasonService) {
		s.tracer = tracer
	}
}

// New creates a DailyReasonService. prompt is sent as-is on every run and
// fallback is stored when generation fails.
func New(
	generator generation.Generator,
	coord coordinator.Coordinator,
	store storage.ReasonStore,
	prompt, fallback string,
	opts ...Option,
) (DailyReasonService, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt must not be empty")
	}
	if strings.TrimSpace(fallback) == "" {
		return nil, ErrNoFallback
	}

	s := &dailyReasonService{
		generator:   generator,
		coordinator: coord,
		store:       store,
		prompt:      prompt,
		fallback:    fallback,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run implements DailyReasonService
func (s *dailyReasonService) Run(ctx context.Context, trigger string) (*RunResult, error) {
	runID := uuid.NewString()
	ctx, span := otel.StartSpan(ctx, s.tracer, otel.SpanRun,
		trace.WithAttributes(
			otel.AttrRunID.String(runID),
			otel.AttrTrigger.String(trigger),
		))
	defer span.End()

	logger := slog.With("run_id", runID, "trigger", trigger)
	logger.InfoContext(ctx, "Daily reason run started")

	reason, err := s.generator.Generate(ctx, s.prompt)
	fallback := false
	if err != nil {
		logger.WarnContext(ctx, "Generation failed, storing fallback reason", "error", err)
		reason = s.fallback
		fallback = true
	}
	span.SetAttributes(otel.AttrFallback.Bool(fallback))

	result, err := s.coordinator.Sync(ctx, reason)
	if err != nil {
		otel.Fail(span, otel.StageSync, err)
		logger.ErrorContext(ctx, "Daily reason run failed", "error", err)
		return nil, fmt.Errorf("sync failed: %w", err)
	}

	logger.InfoContext(ctx, "Daily reason run completed",
		"fallback", fallback,
		"cms_synced", result.CMSErr == nil)

	return &RunResult{
		RunID:    runID,
		Fallback: fallback,
		Record:   result.Record,
		CMS:      result.CMS,
		CMSErr:   result.CMSErr,
	}, nil
}

// Status implements DailyReasonService
func (s *dailyReasonService) Status(ctx context.Context) (*Status, error) {
	record, err := s.store.GetReason(ctx, storage.DailyReasonKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read reason: %w", err)
	}

	link, err := s.store.GetEntryLink(ctx, storage.DailyReasonKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to read entry link: %w", err)
	}

	return &Status{Record: record, Link: link}, nil
}

// CheckReadiness implements DailyReasonService
func (s *dailyReasonService) CheckReadiness(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	return nil
}
