package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware traces HTTP requests using OpenTelemetry.
// The second handler runs inside the otelgin span and tags it with the
// request id, the route parameters and any handler errors.
func TracingMiddleware(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), spanAttributes}
}

func spanAttributes(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}

	if requestID := c.GetString("request_id"); requestID != "" {
		span.SetAttributes(attribute.String("request.id", requestID))
	}
	for _, param := range c.Params {
		span.SetAttributes(attribute.String("route.param."+param.Key, param.Value))
	}

	for _, ginErr := range c.Errors {
		if ginErr.Err != nil {
			span.RecordError(ginErr.Err)
			span.SetStatus(codes.Error, ginErr.Error())
		}
	}
}
