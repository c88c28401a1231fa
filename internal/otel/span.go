// Package otel names the spans and attributes of a daily reason run and
// provides helpers that tolerate a nil tracer.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names. SpanRun is the root of every pipeline run.
const (
	SpanRun          = "service.Run"
	SpanGenerate     = "generation.Generate"
	SpanSync         = "coordinator.Sync"
	SpanSyncCMS      = "coordinator.syncCMS"
	SpanUpsertReason = "storage.UpsertReason"
	SpanGetEntryLink = "storage.GetEntryLink"
	SpanSaveLink     = "storage.SaveEntryLink"
)

// Attribute keys set on pipeline spans.
const (
	AttrRunID        = attribute.Key("dailyreason.run_id")
	AttrReasonKey    = attribute.Key("dailyreason.key")
	AttrTrigger      = attribute.Key("dailyreason.trigger")
	AttrFallback     = attribute.Key("dailyreason.fallback")
	AttrCMSSynced    = attribute.Key("dailyreason.cms_synced")
	AttrFailedStage  = attribute.Key("dailyreason.failed_stage")
	AttrEntryID      = attribute.Key("contentful.entry_id")
	AttrEntryVersion = attribute.Key("contentful.entry_version")
	AttrEntryAction  = attribute.Key("contentful.action")
)

// Stage identifies the step of a run that failed
type Stage string

// Pipeline stages reported by Fail.
const (
	StageGenerate   Stage = "generate"
	StageUpsert     Stage = "relational_upsert"
	StageLinkRead   Stage = "link_read"
	StageLinkWrite  Stage = "link_write"
	StageCMSFetch   Stage = "cms_fetch"
	StageCMSCreate  Stage = "cms_create"
	StageCMSUpdate  Stage = "cms_update"
	StageCMSPublish Stage = "cms_publish"
	StageSync       Stage = "sync"
)

// StartSpan starts name on tracer. With a nil tracer it returns the span
// already in ctx, which is a no-op when tracing is off.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// Fail marks span as failed at stage. The status only names the stage; the
// error text, which may carry a DSN or a CMS response body, goes into the
// exception event.
func Fail(span trace.Span, stage Stage, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(AttrFailedStage.String(string(stage)))
	span.SetStatus(codes.Error, string(stage)+" failed")
}
