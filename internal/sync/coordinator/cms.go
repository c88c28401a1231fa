package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dailyreason/dailyreason/internal/contentful"
	"github.com/dailyreason/dailyreason/internal/otel"
	"github.com/dailyreason/dailyreason/internal/retry"
	"github.com/dailyreason/dailyreason/internal/storage"
)

// syncCMS mirrors reason into the linked entry, creating one when needed, and publishes it.
// Reads and writes of the link table are never retried.
func (c *defaultCoordinator) syncCMS(ctx context.Context, reason string, now time.Time) (*CMSResult, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, otel.SpanSyncCMS)
	defer span.End()

	linkedID, err := c.linkedEntryID(ctx)
	if err != nil {
		otel.Fail(span, otel.StageLinkRead, err)
		return nil, err
	}

	var existing *contentful.Entry
	if linkedID != "" {
		existing, err = c.cms.GetEntry(ctx, linkedID)
		switch {
		case errors.Is(err, contentful.ErrEntryNotFound):
			slog.WarnContext(ctx, "Linked CMS entry not found, creating a new one", "entry_id", linkedID)
			existing = nil
		case err != nil:
			otel.Fail(span, otel.StageCMSFetch, err)
			return nil, fmt.Errorf("failed to fetch entry %s: %w", linkedID, err)
		}
	}

	fields := contentful.Fields{Title: Title(now), Body: reason}

	var (
		entry  *contentful.Entry
		action Action
	)
	if existing != nil {
		entry, err = retry.Do(ctx, c.cmsPolicy("update"), func(ctx context.Context, _ int) (*contentful.Entry, error) {
			return c.cms.UpdateEntry(ctx, linkedID, existing.Sys.Version, fields)
		})
		if err != nil {
			otel.Fail(span, otel.StageCMSUpdate, err)
			return nil, fmt.Errorf("failed to update entry %s: %w", linkedID, err)
		}
		action = ActionUpdated
	} else {
		entry, err = retry.Do(ctx, c.cmsPolicy("create"), func(ctx context.Context, _ int) (*contentful.Entry, error) {
			return c.cms.CreateEntry(ctx, fields)
		})
		if err != nil {
			otel.Fail(span, otel.StageCMSCreate, err)
			return nil, fmt.Errorf("failed to create entry: %w", err)
		}
		action = ActionCreated
		if linkedID != "" {
			action = ActionRecreated
		}

		if err := c.store.SaveEntryLink(ctx, c.key, entry.Sys.ID); err != nil {
			otel.Fail(span, otel.StageLinkWrite, err)
			return nil, fmt.Errorf("failed to save link to entry %s: %w", entry.Sys.ID, err)
		}
		slog.InfoContext(ctx, "CMS entry linked", "key", c.key, "entry_id", entry.Sys.ID)
	}
	c.syncMetrics.RecordCMSAction(ctx, string(action))
	span.SetAttributes(otel.AttrEntryID.String(entry.Sys.ID), otel.AttrEntryAction.String(string(action)))

	published, err := retry.Do(ctx, c.cmsPolicy("publish"), func(ctx context.Context, _ int) (*contentful.Entry, error) {
		return c.cms.PublishEntry(ctx, entry.Sys.ID, entry.Sys.Version)
	})
	if err != nil {
		otel.Fail(span, otel.StageCMSPublish, err)
		return nil, fmt.Errorf("failed to publish entry %s: %w", entry.Sys.ID, err)
	}

	return &CMSResult{
		EntryID:          entry.Sys.ID,
		Version:          published.Sys.Version,
		PublishedVersion: published.Sys.PublishedVersion,
		Action:           action,
	}, nil
}

// linkedEntryID returns the stored entry id, or "" when nothing is linked yet
func (c *defaultCoordinator) linkedEntryID(ctx context.Context) (string, error) {
	link, err := c.store.GetEntryLink(ctx, c.key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read entry link: %w", err)
	}
	return link.ContentfulID, nil
}

func (c *defaultCoordinator) cmsPolicy(op string) retry.Policy {
	return retry.Policy{
		Attempts: c.cmsAttempts,
		Base:     c.cmsBackoffBase,
		Notify: func(attempt int, err error, next time.Duration) {
			slog.Warn("CMS request failed, retrying",
				"operation", op,
				"attempt", attempt,
				"retry_in", next,
				"error", err)
		},
	}
}
