package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BusinessEvents traces the guard pipelines above the HTTP layer
type BusinessEvents struct {
	tracer trace.Tracer
}

var (
	businessEvents     *BusinessEvents
	businessEventsOnce sync.Once
)

// GetBusinessEvents returns the shared business events tracer
func GetBusinessEvents() *BusinessEvents {
	businessEventsOnce.Do(func() {
		businessEvents = &BusinessEvents{tracer: otel.Tracer("business-events")}
	})
	return businessEvents
}

// TraceMemberCreated spans the member-created pipeline
func (be *BusinessEvents) TraceMemberCreated(ctx context.Context, instanceID, memberID string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "guard.member_created",
		trace.WithAttributes(
			attribute.String("wix.instance_id", instanceID),
			attribute.String("member.id", memberID),
		),
	)
}

// TraceMessageReceived spans moderation of one inbox message
func (be *BusinessEvents) TraceMessageReceived(ctx context.Context, instanceID, conversationID string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "guard.message_received",
		trace.WithAttributes(
			attribute.String("wix.instance_id", instanceID),
			attribute.String("conversation.id", conversationID),
		),
	)
}

// TraceBulkAvatars spans a dashboard bulk avatar run
func (be *BusinessEvents) TraceBulkAvatars(ctx context.Context, memberCount int) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "avatars.bulk_update",
		trace.WithAttributes(attribute.Int("avatars.member_count", memberCount)),
	)
}

// RecordOutcome tags span with a short pipeline result, e.g. "blocked" or "avatar_set"
func RecordOutcome(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String("guard.outcome", outcome))
}
