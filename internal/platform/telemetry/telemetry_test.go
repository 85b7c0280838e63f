package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	return recorder
}

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})

	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestStartSpan_EndSpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "publish_cycle", attribute.String("cycle.id", "abc"))
	assert.NotEmpty(t, TraceID(ctx))
	EndSpan(span, errors.New("fetch shm.jpg: status 502"))

	_, ok := StartSpan(context.Background(), "ok")
	EndSpan(ok, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)

	assert.Equal(t, "publish_cycle", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String("cycle.id", "abc"))
	assert.Len(t, ended[0].Events(), 1, "error recorded as span event")

	assert.Equal(t, codes.Unset, ended[1].Status().Code)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestMiddleware_SetsTraceHeader(t *testing.T) {
	installRecorder(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Middleware("resonance-bot")...)
	router.GET("/-/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(TraceIDHeader), 32)
}
