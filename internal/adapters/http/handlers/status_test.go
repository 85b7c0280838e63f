package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/resonance-bot/internal/adapters/http/dto"
	"github.com/jsamuelsen/resonance-bot/internal/app"
	"github.com/jsamuelsen/resonance-bot/internal/ports"
)

type fakeRunner struct {
	status app.Status
}

func (f fakeRunner) Status() app.Status { return f.status }

type previewFunc func(ctx context.Context, at time.Time) string

func (f previewFunc) Caption(ctx context.Context, at time.Time) string { return f(ctx, at) }

// Midnight in Tomsk (UTC+7) on 2024-03-15.
var firstFire = time.Date(2024, 3, 14, 17, 0, 0, 0, time.UTC)

func newStatusRouter(t *testing.T, status app.Status, preview previewFunc, now time.Time) *gin.Engine {
	t.Helper()

	if preview == nil {
		preview = func(context.Context, time.Time) string { return "" }
	}

	handler, err := NewStatusHandler(fakeRunner{status: status}, preview, "Asia/Tomsk")
	require.NoError(t, err)

	handler.now = func() time.Time { return now }

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))

	return router
}

func get(t *testing.T, router *gin.Engine, target string, out any) int {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}

	return w.Code
}

func TestNewStatusHandler_UnknownZone(t *testing.T) {
	_, err := NewStatusHandler(fakeRunner{}, nil, "Mars/Olympus_Mons")

	require.Error(t, err)
}

func TestStatusHandler_Status(t *testing.T) {
	lastFire := firstFire.Add(6 * time.Hour)

	router := newStatusRouter(t, app.Status{
		State:        app.StateWaiting,
		FirstFire:    firstFire,
		NextFire:     lastFire.Add(6 * time.Hour),
		Period:       6 * time.Hour,
		LastFire:     lastFire,
		LastResult:   ports.CycleResultFetchError,
		LastError:    "fetch shm.jpg: image not found",
		LastDuration: 1500 * time.Millisecond,
		LastSuccess:  firstFire.Add(2 * time.Second),
		Cycles:       2,
		Failures:     1,
	}, nil, lastFire.Add(time.Minute))

	var resp dto.StatusResponse
	code := get(t, router, "/api/v1/status", &resp)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "waiting", resp.State)
	assert.Equal(t, "6h0m0s", resp.Period)
	assert.Equal(t, "2024-03-15 00:00:00 +07", resp.FirstFire.Local)
	assert.True(t, firstFire.Equal(resp.FirstFire.UTC))
	require.NotNil(t, resp.NextFire)
	assert.Equal(t, "2024-03-15 12:00:00 +07", resp.NextFire.Local)
	require.NotNil(t, resp.LastCycle)
	assert.Equal(t, "fetch_error", resp.LastCycle.Result)
	assert.Equal(t, "fetch shm.jpg: image not found", resp.LastCycle.Error)
	assert.Equal(t, "1.5s", resp.LastCycle.Duration)
	require.NotNil(t, resp.LastCycle.LastSuccess)
	assert.Equal(t, 2, resp.Cycles)
	assert.Equal(t, 1, resp.Failures)
}

func TestStatusHandler_StatusBeforeFirstFire(t *testing.T) {
	router := newStatusRouter(t, app.Status{
		State:     app.StateWaiting,
		FirstFire: firstFire,
		NextFire:  firstFire,
		Period:    24 * time.Hour,
	}, nil, firstFire.Add(-time.Hour))

	var resp dto.StatusResponse
	code := get(t, router, "/api/v1/status", &resp)

	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, resp.LastCycle)
	require.NotNil(t, resp.NextFire)
}

func TestStatusHandler_StatusStopped(t *testing.T) {
	router := newStatusRouter(t, app.Status{
		State:     app.StateStopped,
		FirstFire: firstFire,
		NextFire:  firstFire,
		Period:    time.Hour,
	}, nil, firstFire)

	var resp dto.StatusResponse
	get(t, router, "/api/v1/status", &resp)

	assert.Equal(t, "stopped", resp.State)
	assert.Nil(t, resp.NextFire)
}

func TestStatusHandler_Schedule(t *testing.T) {
	status := app.Status{State: app.StateWaiting, FirstFire: firstFire, Period: 6 * time.Hour}

	tests := []struct {
		name      string
		now       time.Time
		query     string
		wantCount int
		wantFirst string
	}{
		{
			name:      "default count before first fire",
			now:       firstFire.Add(-3 * time.Hour),
			wantCount: 5,
			wantFirst: "2024-03-15 00:00:00 +07",
		},
		{
			name:      "explicit count mid-grid",
			now:       firstFire.Add(7 * time.Hour),
			query:     "?count=2",
			wantCount: 2,
			wantFirst: "2024-03-15 12:00:00 +07",
		},
		{
			name:      "exactly on a grid point moves to the next",
			now:       firstFire.Add(6 * time.Hour),
			query:     "?count=1",
			wantCount: 1,
			wantFirst: "2024-03-15 12:00:00 +07",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newStatusRouter(t, status, nil, tt.now)

			var resp dto.ScheduleResponse
			code := get(t, router, "/api/v1/schedule"+tt.query, &resp)

			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, "Asia/Tomsk", resp.ReferenceZone)
			require.Len(t, resp.Fires, tt.wantCount)
			assert.Equal(t, tt.wantFirst, resp.Fires[0].Local)

			for i := 1; i < len(resp.Fires); i++ {
				assert.Equal(t, 6*time.Hour, resp.Fires[i].UTC.Sub(resp.Fires[i-1].UTC))
			}
		})
	}
}

func TestStatusHandler_ScheduleInvalidCount(t *testing.T) {
	status := app.Status{FirstFire: firstFire, Period: time.Hour}

	tests := []struct {
		name        string
		query       string
		wantDetails bool
	}{
		{name: "negative", query: "?count=-1", wantDetails: true},
		{name: "above the limit", query: "?count=49", wantDetails: true},
		{name: "not a number", query: "?count=many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newStatusRouter(t, status, nil, firstFire)

			var resp dto.ErrorResponse
			code := get(t, router, "/api/v1/schedule"+tt.query, &resp)

			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, dto.ErrorCodeValidation, resp.Error.Code)

			if tt.wantDetails {
				assert.Contains(t, resp.Error.Details, "count")
			}
		})
	}
}

func TestStatusHandler_Caption(t *testing.T) {
	now := time.Date(2024, 3, 15, 5, 0, 0, 0, time.UTC)

	var gotAt time.Time

	router := newStatusRouter(t, app.Status{}, func(_ context.Context, at time.Time) string {
		gotAt = at
		return "Время обновления"
	}, now)

	t.Run("defaults to now", func(t *testing.T) {
		var resp dto.CaptionResponse
		code := get(t, router, "/api/v1/caption", &resp)

		assert.Equal(t, http.StatusOK, code)
		assert.True(t, now.Equal(gotAt))
		assert.Equal(t, "Время обновления", resp.Caption)
		assert.Equal(t, 16, resp.Length, "length counts characters, not bytes")
	})

	t.Run("explicit instant", func(t *testing.T) {
		var resp dto.CaptionResponse
		code := get(t, router, "/api/v1/caption?at=2024-07-01T00:00:00Z", &resp)

		assert.Equal(t, http.StatusOK, code)
		assert.True(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC).Equal(gotAt))
		assert.True(t, gotAt.Equal(resp.At))
	})

	t.Run("malformed instant", func(t *testing.T) {
		var resp dto.ErrorResponse
		code := get(t, router, "/api/v1/caption?at=yesterday", &resp)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, dto.ErrorCodeValidation, resp.Error.Code)
	})
}
