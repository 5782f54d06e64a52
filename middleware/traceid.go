package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"
)

// maxTraceIDLen bounds client-supplied IDs; longer ones are replaced.
const maxTraceIDLen = 64

type traceCtxKey struct{}

// TraceID injects a UUID trace ID into every request context and response header.
// A client-supplied X-Trace-ID is reused when it is non-empty and short enough.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" || len(traceID) > maxTraceIDLen {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), traceCtxKey{}, traceID))
		c.Header(TraceIDHeader, traceID)
		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the Gin context.
func GetTraceID(c *gin.Context) string {
	if v, exists := c.Get(TraceIDKey); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// TraceIDFrom retrieves the trace ID from a request context.
func TraceIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(traceCtxKey{}).(string)
	return s
}
