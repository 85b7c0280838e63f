package telemetry

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// TraceIDHeader carries the trace id of an ops request back to the caller.
const TraceIDHeader = "X-Trace-ID"

// Middleware returns the ops server tracing chain: otelgin spans followed by
// the trace id response header.
func Middleware(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		traceIDHeader(),
	}
}

func traceIDHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := TraceID(c.Request.Context()); id != "" {
			c.Header(TraceIDHeader, id)
		}

		c.Next()
	}
}
