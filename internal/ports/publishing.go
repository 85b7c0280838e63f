// Package ports defines the contracts between the publish job and its adapters.
// The application layer depends only on these interfaces; adapters for the
// imagery host, the Telegram Bot API and Prometheus implement them.
//
// Every blocking method takes a context first and returns domain error types
// (domain.FetchError, domain.PublishError), never transport errors.
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/resonance-bot/internal/domain"
)

// ImageFetcher downloads one image payload from the observatory host.
type ImageFetcher interface {
	// Fetch retrieves the image at path, relative to the configured base URL.
	// Returns a domain.FetchError on any failure, including a payload that is
	// not an image.
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// MediaPublisher delivers an ordered media group to a channel.
type MediaPublisher interface {
	// SendMediaGroup posts items as a single album. Item order is preserved and
	// only items[0].Caption is shown. Returns a domain.PublishError on failure.
	SendMediaGroup(ctx context.Context, channelID int64, items []domain.MediaItem) error
}

// IdentityProvider reports the account the job publishes as.
type IdentityProvider interface {
	Self(ctx context.Context) (domain.BotIdentity, error)
}

// CycleResult classifies how a publish cycle ended.
type CycleResult string

const (
	CycleResultSuccess      CycleResult = "success"
	CycleResultFetchError   CycleResult = "fetch_error"
	CycleResultPublishError CycleResult = "publish_error"
	CycleResultError        CycleResult = "error"
)

// CycleObserver receives schedule and cycle events, typically for metrics.
type CycleObserver interface {
	// CycleFinished is called once per fired cycle.
	CycleFinished(result CycleResult, duration time.Duration)

	// NextFireScheduled is called whenever the runner arms its timer.
	NextFireScheduled(at time.Time)
}

// NopCycleObserver discards all events.
type NopCycleObserver struct{}

// CycleFinished implements CycleObserver.
func (NopCycleObserver) CycleFinished(CycleResult, time.Duration) {}

// NextFireScheduled implements CycleObserver.
func (NopCycleObserver) NextFireScheduled(time.Time) {}
