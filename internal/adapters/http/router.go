package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/resonance-bot/internal/adapters/http/handlers"
	"github.com/jsamuelsen/resonance-bot/internal/adapters/http/middleware"
	"github.com/jsamuelsen/resonance-bot/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds /api/v1 requests.
const DefaultRequestTimeout = 5 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	Logger *slog.Logger

	// ServiceName names the otelgin server spans.
	ServiceName string

	HealthHandler *handlers.HealthHandler

	// StatusHandler serves /api/v1. Nil leaves only the probe routes.
	StatusHandler *handlers.StatusHandler

	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Logger - request-scoped logger
//  3. Request ID - generate/extract request ID
//  4. OpenTelemetry - server spans and the trace id header
//  5. Logging - request logging (skips /-/)
//
// Route groups:
//   - /-/ : probes, build info and metrics, no timeout
//   - /api/v1/ : read-only job status
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(noRoute)
	engine.NoMethod(noMethod)

	engine.Use(
		middleware.Recovery(),
		middleware.Logger(cfg.Logger),
		middleware.RequestID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging())

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.StatusHandler == nil {
		return
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.Timeout(timeout))
	cfg.StatusHandler.RegisterRoutes(apiV1)
}
