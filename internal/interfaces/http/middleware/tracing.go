package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitestock/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// untracedPaths are probed too often to be worth a span
var untracedPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Tracing starts a server span per request. A nil provider uses the global
// one.
func Tracing(serviceName string, provider trace.TracerProvider) gin.HandlerFunc {
	opts := []otelgin.Option{
		otelgin.WithFilter(func(r *http.Request) bool {
			_, skip := untracedPaths[r.URL.Path]
			return !skip
		}),
	}
	if provider != nil {
		opts = append(opts, otelgin.WithTracerProvider(provider))
	}
	return otelgin.Middleware(serviceName, opts...)
}

// SpanAttributes tags the request span with the request ID and the
// authenticated caller, and marks it failed on 4xx and 5xx. It belongs
// after JWTAuth.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		attrs := make([]attribute.KeyValue, 0, 3)
		if id := c.GetString(JWTRoleKey); id != "" {
			attrs = append(attrs, attribute.String("role", id))
		}
		if id := c.GetString(JWTUserIDKey); id != "" {
			attrs = append(attrs, attribute.String("user_id", id))
		}
		if id := c.GetString(logger.GinRequestIDKey); id != "" {
			attrs = append(attrs, attribute.String("request_id", id))
		}
		span.SetAttributes(attrs...)

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
