package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "social-media-backend/realtime"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartChatSpan starts a span for a chat operation on roomID
func StartChatSpan(ctx context.Context, op, roomID string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "chat."+op,
		trace.WithAttributes(attribute.String("chat.room_id", roomID)),
	)
}

// StartEventSpan starts a span for one inbound realtime event
func StartEventSpan(ctx context.Context, eventType, clientID string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "realtime."+eventType,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("realtime.event", eventType),
			attribute.String("realtime.client_id", clientID),
		),
	)
}

// End records err on span, if any, and ends it
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
