// Package coordinator writes the generated reason to both sinks.
//
// A sync runs two phases in order:
//
//   - Relational: upsert the row keyed "daily_reason". A failure here fails the sync.
//   - CMS: look up the linked entry, update it or create a new one, then publish.
//     Failures here are returned in Result.CMSErr and never undo the relational write.
//
// # CMS phase
//
// The link table maps the row key to a CMS entry id. When no link exists, or the
// linked entry returns 404, a new entry is created and its sys.id is stored as
// the link exactly once. Updates send the fetched sys.version; publish sends the
// version returned by the create or update.
//
// Create, update and publish are retried with linear backoff (3 tries, 800ms base
// by default). Reading or writing the link and fetching the entry are not retried.
//
// # Usage Example
//
//	coord := coordinator.New(store, cmsClient,
//	    coordinator.WithSyncMetrics(syncMetrics),
//	    coordinator.WithTracer(tracer),
//	)
//
//	result, err := coord.Sync(ctx, reason)
//	if err != nil {
//	    return err // nothing was stored
//	}
//	if result.CMSErr != nil {
//	    slog.Warn("CMS out of date", "error", result.CMSErr)
//	}
//
// Two overlapping syncs that both find no link can each create an entry; the
// last link write wins and the other entry is orphaned.
package coordinator
