// Package app contains the publish job: a single publish cycle and the runner
// that fires it on a midnight-aligned schedule.
//
// The application layer coordinates domain logic and adapters through ports.
// It holds no HTTP or Bot API specifics.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/platform/logging"
	"github.com/jsamuelsen/resonance-bot/internal/platform/telemetry"
	"github.com/jsamuelsen/resonance-bot/internal/ports"
)

// CycleConfig configures a PublishCycle.
type CycleConfig struct {
	ChannelID int64

	// Reference is the zone the caption header is rendered in. It is also the first zone line.
	Reference domain.DisplayZone

	// DisplayZones follow the reference line, in order.
	DisplayZones []domain.DisplayZone

	// ImagePaths are fetched relative to the image source. Order is kept; the first carries the caption.
	ImagePaths []string

	Composer  *domain.CaptionComposer
	Quotes    *domain.QuoteBank
	Fetcher   ports.ImageFetcher
	Publisher ports.MediaPublisher
	Observer  ports.CycleObserver
	Logger    *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time

	// Rand picks quotes. Nil uses the global source.
	Rand *rand.Rand

	// NewID generates cycle ids. Defaults to uuid.NewString.
	NewID func() string
}

// PublishCycle performs one firing: compose the caption, fetch every image,
// then send a single media group. Run is not safe for concurrent use; the
// runner serializes it. Caption may be called from any goroutine.
type PublishCycle struct {
	channelID int64
	refLoc    *time.Location
	zones     []domain.DisplayZone
	paths     []string
	composer  *domain.CaptionComposer
	quotes    *domain.QuoteBank
	fetcher   ports.ImageFetcher
	publisher ports.MediaPublisher
	observer  ports.CycleObserver
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewPublishCycle creates a publish cycle.
// Panics if Fetcher or Publisher is nil.
func NewPublishCycle(cfg CycleConfig) (*PublishCycle, error) {
	if cfg.Fetcher == nil {
		panic("PublishCycle: Fetcher is required")
	}

	if cfg.Publisher == nil {
		panic("PublishCycle: Publisher is required")
	}

	if len(cfg.ImagePaths) == 0 {
		return nil, domain.NewConfigError("images.paths", "at least one image is required")
	}

	refLoc, err := domain.LoadZone(cfg.Reference.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: reference zone: %w", domain.ErrConfig, err)
	}

	quotes := cfg.Quotes
	if quotes == nil {
		quotes, err = domain.NewQuoteBank(domain.DefaultQuotes)
		if err != nil {
			return nil, fmt.Errorf("default quotes: %w", err)
		}
	}

	c := &PublishCycle{
		channelID: cfg.ChannelID,
		refLoc:    refLoc,
		zones:     append([]domain.DisplayZone{cfg.Reference}, cfg.DisplayZones...),
		paths:     append([]string(nil), cfg.ImagePaths...),
		composer:  cfg.Composer,
		quotes:    quotes,
		fetcher:   cfg.Fetcher,
		publisher: cfg.Publisher,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
		now:       cfg.Now,
		rand:      cfg.Rand,
		newID:     cfg.NewID,
	}

	if c.composer == nil {
		c.composer = domain.NewCaptionComposer()
	}

	if c.observer == nil {
		c.observer = ports.NopCycleObserver{}
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.logger = c.logger.With(slog.String("component", "app.PublishCycle"))

	if c.now == nil {
		c.now = time.Now
	}

	if c.newID == nil {
		c.newID = uuid.NewString
	}

	return c, nil
}

// Run performs one cycle. A *domain.FetchError means nothing was published;
// a *domain.PublishError means the send itself failed. Neither is fatal to
// the runner.
func (c *PublishCycle) Run(ctx context.Context) (err error) {
	cycleID := c.newID()
	ctx = logging.WithCycleID(logging.WithContext(ctx, c.logger), cycleID)
	logger := logging.FromContext(ctx)

	ctx, span := telemetry.StartSpan(ctx, "cycle.run",
		attribute.String("cycle.id", cycleID),
		attribute.Int64("channel.id", c.channelID),
		attribute.Int("images", len(c.paths)),
	)
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		result := ClassifyResult(err)

		telemetry.EndSpan(span, err)
		c.observer.CycleFinished(result, duration)

		if err != nil {
			logger.ErrorContext(ctx, "publish cycle failed",
				slog.String("result", string(result)),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)

			return
		}

		logger.InfoContext(ctx, "publish cycle completed", slog.Duration("duration", duration))
	}()

	var caption string

	_ = runStep(ctx, StepCompose, func(ctx context.Context) error {
		caption = c.compose(ctx, c.now())
		return nil
	})

	var items []domain.MediaItem

	err = runStep(ctx, StepFetch, func(ctx context.Context) error {
		var fetchErr error

		items, fetchErr = c.fetchAll(ctx)

		return fetchErr
	})
	if err != nil {
		return err
	}

	payload := domain.NewPublishPayload(c.channelID, items, caption)

	return runStep(ctx, StepPublish, func(ctx context.Context) error {
		return c.publisher.SendMediaGroup(ctx, payload.ChannelID, payload.Items)
	})
}

// Caption renders the caption for at without fetching or publishing.
func (c *PublishCycle) Caption(ctx context.Context, at time.Time) string {
	return c.compose(logging.WithContext(ctx, c.logger), at)
}

// ImagePaths returns the configured image paths in publish order.
func (c *PublishCycle) ImagePaths() []string {
	return append([]string(nil), c.paths...)
}

func (c *PublishCycle) compose(ctx context.Context, now time.Time) string {
	logger := logging.FromContext(ctx)

	reference := now.In(c.refLoc)
	conversions := domain.ConvertAll(reference, c.zones)

	for _, conv := range conversions {
		if !conv.OK() {
			logger.WarnContext(ctx, "zone conversion failed",
				slog.String("zone", conv.Zone.ID),
				slog.String("policy", c.composer.Policy().String()),
				slog.Any("error", conv.Err),
			)
		}
	}

	caption := c.composer.Compose(reference, conversions, c.pickQuote())

	logger.DebugContext(ctx, "caption composed",
		slog.Time("reference", reference),
		slog.Int("lines", strings.Count(caption, "\n")+1),
	)

	return caption
}

func (c *PublishCycle) pickQuote() string {
	c.randMu.Lock()
	defer c.randMu.Unlock()

	return c.quotes.Pick(c.rand)
}

// fetchAll downloads every image concurrently. The first failure cancels the rest.
func (c *PublishCycle) fetchAll(ctx context.Context) ([]domain.MediaItem, error) {
	fns := make([]func(context.Context) (domain.MediaItem, error), len(c.paths))

	for i, p := range c.paths {
		fns[i] = func(ctx context.Context) (domain.MediaItem, error) {
			data, err := c.fetcher.Fetch(ctx, p)
			if err != nil {
				if !domain.IsFetch(err) {
					err = domain.NewFetchError(p, "fetch failed", err)
				}

				return domain.MediaItem{}, err
			}

			return domain.MediaItem{Bytes: data, Filename: path.Base(p)}, nil
		}
	}

	return Parallel(ctx, fns...)
}
