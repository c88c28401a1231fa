package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/dailyreason/dailyreason/internal/db/sqlc"
	"github.com/dailyreason/dailyreason/internal/otel"
)

// PostgresOption configures a PostgresStore
type PostgresOption func(*PostgresStore)

// WithTracer sets the tracer used for query spans
func WithTracer(tracer trace.Tracer) PostgresOption {
	return func(s *PostgresStore) {
		s.tracer = tracer
	}
}

// PostgresStore implements ReasonStore on top of the generated queries
type PostgresStore struct {
	queries *sqlc.Queries
	pool    *pgxpool.Pool
	tracer  trace.Tracer
}

var _ ReasonStore = (*PostgresStore)(nil)

// NewPostgresStore creates a store backed by pool
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{
		queries: sqlc.New(pool),
		pool:    pool,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertReason implements ReasonStore
func (s *PostgresStore) UpsertReason(ctx context.Context, key, reason string, generatedAt time.Time) (*Record, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, otel.SpanUpsertReason,
		trace.WithAttributes(otel.AttrReasonKey.String(key)))
	defer span.End()

	row, err := s.queries.UpsertDailyReason(ctx, sqlc.UpsertDailyReasonParams{
		Key:         key,
		Reason:      reason,
		GeneratedAt: pgtype.Timestamptz{Time: generatedAt.UTC(), Valid: true},
	})
	if err != nil {
		otel.Fail(span, otel.StageUpsert, err)
		return nil, fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return toRecord(row), nil
}

// GetReason implements ReasonStore
func (s *PostgresStore) GetReason(ctx context.Context, key string) (*Record, error) {
	row, err := s.queries.GetDailyReason(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reason %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reason %s: %w", key, err)
	}
	return toRecord(row), nil
}

// GetEntryLink implements ReasonStore
func (s *PostgresStore) GetEntryLink(ctx context.Context, key string) (*EntryLink, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, otel.SpanGetEntryLink,
		trace.WithAttributes(otel.AttrReasonKey.String(key)))
	defer span.End()

	row, err := s.queries.GetEntryLink(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("entry link %s: %w", key, ErrNotFound)
		}
		otel.Fail(span, otel.StageLinkRead, err)
		return nil, fmt.Errorf("failed to read entry link %s: %w", key, err)
	}
	return &EntryLink{
		Key:          row.Key,
		ContentfulID: row.ContentfulID,
		UpdatedAt:    row.UpdatedAt.Time,
	}, nil
}

// SaveEntryLink implements ReasonStore
func (s *PostgresStore) SaveEntryLink(ctx context.Context, key, contentfulID string) error {
	ctx, span := otel.StartSpan(ctx, s.tracer, otel.SpanSaveLink,
		trace.WithAttributes(otel.AttrReasonKey.String(key), otel.AttrEntryID.String(contentfulID)))
	defer span.End()

	err := s.queries.UpsertEntryLink(ctx, sqlc.UpsertEntryLinkParams{
		Key:          key,
		ContentfulID: contentfulID,
	})
	if err != nil {
		otel.Fail(span, otel.StageLinkWrite, err)
		return fmt.Errorf("failed to save entry link %s: %w", key, err)
	}
	return nil
}

// Ping implements ReasonStore
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func toRecord(row sqlc.DailyReason) *Record {
	return &Record{
		Key:         row.Key,
		Reason:      row.Reason,
		GeneratedAt: row.GeneratedAt.Time.UTC(),
		UpdatedAt:   row.UpdatedAt.Time.UTC(),
	}
}
