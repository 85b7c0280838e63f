package imagery

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/resonance-bot/internal/adapters/clients"
	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/platform/config"
)

// jpegBytes is the smallest prefix filetype recognises as image/jpeg.
var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type fetchCall struct {
	path string
	size int
	err  error
}

type recorderSpy struct {
	mu    sync.Mutex
	calls []fetchCall
}

func (r *recorderSpy) ImageFetched(path string, size int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, fetchCall{path: path, size: size, err: err})
}

func setupFetcher(t *testing.T, handler http.HandlerFunc, maxBytes int64) (*Fetcher, *recorderSpy) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(&clients.Config{
		ServiceName: "sosrff",
		BaseURL:     server.URL + "/new/",
		Timeout:     5 * time.Second,
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   2,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
	})
	require.NoError(t, err)

	spy := &recorderSpy{}

	return New(Config{
		Client:   client,
		MaxBytes: maxBytes,
		Recorder: spy,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}), spy
}

func TestNew_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() { New(Config{}) })
}

func TestNew_Defaults(t *testing.T) {
	client, err := clients.New(&clients.Config{ServiceName: "sosrff", BaseURL: "http://localhost"})
	require.NoError(t, err)

	f := New(Config{Client: client})

	assert.Equal(t, DefaultMaxBytes, f.maxBytes)
	assert.NotNil(t, f.recorder)
	assert.NotNil(t, f.logger)
	assert.Equal(t, "imagery", f.Name())
}

func TestFetcher_Fetch_Success(t *testing.T) {
	var gotPath string

	f, spy := setupFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpegBytes)
	}, 0)

	data, err := f.Fetch(context.Background(), "shm.jpg")

	require.NoError(t, err)
	assert.Equal(t, jpegBytes, data)
	assert.Equal(t, "/new/shm.jpg", gotPath)
	require.Len(t, spy.calls, 1)
	assert.Equal(t, fetchCall{path: "shm.jpg", size: len(jpegBytes)}, spy.calls[0])
}

func TestFetcher_Fetch_Failures(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		maxBytes int64
		reason   string
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) },
			reason:  "image not found",
		},
		{
			name:    "gateway error",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			reason:  "image source unavailable (HTTP 502)",
		},
		{
			name:    "redirect status",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotModified) },
			reason:  "unexpected HTTP 304",
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
			reason:  "empty body",
		},
		{
			name: "html instead of image",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
			},
			reason: "not an image",
		},
		{
			name: "oversized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(append(append([]byte{}, jpegBytes...), make([]byte, 64)...))
			},
			maxBytes: 32,
			reason:   "body exceeds 32 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, spy := setupFetcher(t, tt.handler, tt.maxBytes)

			data, err := f.Fetch(context.Background(), "srf.jpg")

			require.Error(t, err)
			assert.Nil(t, data)
			assert.True(t, domain.IsFetch(err))

			var fetchErr *domain.FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, "srf.jpg", fetchErr.Resource)
			assert.Equal(t, tt.reason, fetchErr.Reason)

			require.Len(t, spy.calls, 1)
			assert.Equal(t, 0, spy.calls[0].size)
			assert.Error(t, spy.calls[0].err)
		})
	}
}

func TestFetcher_Fetch_CircuitOpen(t *testing.T) {
	var hits atomic.Int32

	f, _ := setupFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 0)

	for range 2 {
		_, err := f.Fetch(context.Background(), "sra.jpg")
		require.Error(t, err)
	}

	_, err := f.Fetch(context.Background(), "sra.jpg")

	require.ErrorIs(t, err, clients.ErrCircuitOpen)
	assert.True(t, domain.IsFetch(err))
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetcher_Fetch_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := clients.New(&clients.Config{ServiceName: "sosrff", BaseURL: url})
	require.NoError(t, err)

	f := New(Config{Client: client})

	_, err = f.Fetch(context.Background(), "srq.jpg")

	require.ErrorIs(t, err, clients.ErrRequestFailed)
	assert.True(t, domain.IsFetch(err))
}

func TestFetcher_Check(t *testing.T) {
	f, _ := setupFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 0)

	require.NoError(t, f.Check(context.Background()))

	for range 2 {
		_, _ = f.Fetch(context.Background(), "shm.jpg")
	}

	err := f.Check(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sosrff circuit open")
}

func TestMapStatusCode(t *testing.T) {
	err := mapStatusCode("shm.jpg", http.StatusGatewayTimeout)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "image source unavailable (HTTP 504)", fetchErr.Reason)
	assert.NoError(t, fetchErr.Cause)
}
