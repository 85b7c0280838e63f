package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/resonance-bot/internal/adapters/http/dto"
	"github.com/jsamuelsen/resonance-bot/internal/platform/telemetry"
)

// RespondWithErrorCode writes an error response with a specific error code,
// including the trace ID when the request is sampled.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	errResp := dto.NewErrorResponse(code, message).WithTraceID(telemetry.TraceID(c.Request.Context()))
	c.JSON(dto.HTTPStatusFromCode(code), errResp)
}

func noRoute(c *gin.Context) {
	RespondWithErrorCode(c, dto.ErrorCodeNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
}

func noMethod(c *gin.Context) {
	RespondWithErrorCode(c, dto.ErrorCodeMethodNotAllowed, c.Request.Method+" not allowed on "+c.Request.URL.Path)
}
