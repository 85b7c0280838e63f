// Package imagery fetches the spectrogram images from the observation site.
// It translates transport failures and bad payloads into domain.FetchError so
// nothing above the adapter sees HTTP details.
package imagery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/h2non/filetype"

	"github.com/jsamuelsen/resonance-bot/internal/adapters/clients"
	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/platform/logging"
)

// DefaultMaxBytes caps a single image body when Config.MaxBytes is unset.
const DefaultMaxBytes int64 = 10 << 20

// Recorder receives one call per fetch attempt.
type Recorder interface {
	ImageFetched(path string, size int, err error)
}

type nopRecorder struct{}

func (nopRecorder) ImageFetched(string, int, error) {}

// Config contains configuration for the image fetcher.
type Config struct {
	// Client is the HTTP client to use. Its BaseURL should point at the image directory.
	Client *clients.Client

	// MaxBytes limits the accepted body size. Zero means DefaultMaxBytes.
	MaxBytes int64

	Recorder Recorder
	Logger   *slog.Logger
}

// Fetcher implements ports.ImageFetcher and ports.HealthChecker.
type Fetcher struct {
	client   *clients.Client
	maxBytes int64
	recorder Recorder
	logger   *slog.Logger
}

// New creates an image fetcher.
// Panics if Client is nil.
func New(cfg Config) *Fetcher {
	if cfg.Client == nil {
		panic("imagery: Client is required")
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		client:   cfg.Client,
		maxBytes: maxBytes,
		recorder: recorder,
		logger:   logger,
	}
}

// Fetch downloads path relative to the configured base URL and returns the raw bytes.
// Every failure is a *domain.FetchError naming path.
func (f *Fetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	data, err := f.fetch(ctx, path)
	f.recorder.ImageFetched(path, len(data), err)

	if err != nil {
		logging.FromContext(ctx).Warn("image fetch failed",
			slog.String("path", path),
			slog.Any("error", err),
		)

		return nil, err
	}

	return data, nil
}

func (f *Fetcher) fetch(ctx context.Context, path string) ([]byte, error) {
	logger := logging.FromContext(ctx)
	logger.Log(ctx, logging.LevelTrace, "fetching image", slog.String("path", path))

	resp, err := f.client.Get(ctx, path)
	if err != nil {
		return nil, mapClientError(path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBytes))
		return nil, mapStatusCode(path, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, domain.NewFetchError(path, "reading body", err)
	}

	return f.validate(ctx, path, data)
}

// validate rejects empty, oversized and non-image payloads.
func (f *Fetcher) validate(ctx context.Context, path string, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, domain.NewFetchError(path, "empty body", nil)
	}

	if int64(len(data)) > f.maxBytes {
		return nil, domain.NewFetchError(path, fmt.Sprintf("body exceeds %d bytes", f.maxBytes), nil)
	}

	if !filetype.IsImage(data) {
		return nil, domain.NewFetchError(path, "not an image", nil)
	}

	kind, _ := filetype.Match(data)

	logging.FromContext(ctx).Debug("image fetched",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
		slog.String("mime", kind.MIME.Value),
	)

	return data, nil
}

// Name returns the health check name for the image source.
// Implements ports.HealthChecker.
func (f *Fetcher) Name() string {
	return "imagery"
}

// Check reports the image source unhealthy while its circuit is open. No network call is made.
// Implements ports.HealthChecker.
func (f *Fetcher) Check(_ context.Context) error {
	snap := f.client.Circuit()
	if snap.State == clients.StateOpen {
		return fmt.Errorf("%s circuit open, next probe at %s",
			f.client.ServiceName(), snap.RetryAt.UTC().Format(time.RFC3339))
	}

	return nil
}
