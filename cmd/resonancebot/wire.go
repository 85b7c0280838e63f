package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/resonance-bot/internal/adapters/clients"
	"github.com/jsamuelsen/resonance-bot/internal/adapters/clients/imagery"
	"github.com/jsamuelsen/resonance-bot/internal/adapters/telegram"
	"github.com/jsamuelsen/resonance-bot/internal/app"
	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/platform/config"
	"github.com/jsamuelsen/resonance-bot/internal/ports"
)

const (
	imageServiceName    = "sosrff"
	telegramServiceName = "telegram"

	// periodTimeoutDivisor caps a single request at a quarter of the period.
	periodTimeoutDivisor = 4
)

// requestTimeout bounds one fetch or send: the configured client timeout, but
// never more than a quarter of the period.
func requestTimeout(cfg *config.Config) (time.Duration, error) {
	period, err := domain.ComputePeriod(cfg.Schedule.UpdateHours)
	if err != nil {
		return 0, err
	}

	return min(cfg.Client.Timeout, period/periodTimeoutDivisor), nil
}

func userAgent(cfg *config.Config) string {
	return cfg.App.Name + "/" + Version
}

func newImageFetcher(cfg *config.Config, timeout time.Duration, recorder imagery.Recorder, logger *slog.Logger) (*imagery.Fetcher, error) {
	client, err := clients.New(&clients.Config{
		BaseURL:     cfg.Images.BaseURL,
		ServiceName: imageServiceName,
		Timeout:     timeout,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		UserAgent:   userAgent(cfg),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating image client: %w", err)
	}

	return imagery.New(imagery.Config{
		Client:   client,
		MaxBytes: cfg.Images.MaxBytes,
		Recorder: recorder,
		Logger:   logger,
	}), nil
}

// newPublisher connects to the Bot API through the instrumented client, so
// sends get the same spans, metrics and circuit breaker as image fetches.
func newPublisher(ctx context.Context, cfg *config.Config, timeout time.Duration, logger *slog.Logger) (*telegram.Publisher, error) {
	client, err := clients.New(&clients.Config{
		ServiceName: telegramServiceName,
		Timeout:     timeout,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		UserAgent:   userAgent(cfg),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating bot api client: %w", err)
	}

	return telegram.New(ctx, telegram.Config{
		Token:      cfg.Bot.Token,
		Endpoint:   cfg.Bot.Endpoint,
		HTTPClient: client.Doer(),
		Circuit:    client,
		Logger:     logger,
	})
}

func newCycle(
	cfg *config.Config,
	fetcher ports.ImageFetcher,
	publisher ports.MediaPublisher,
	observer ports.CycleObserver,
	logger *slog.Logger,
) (*app.PublishCycle, error) {
	policy, err := domain.ParseConversionPolicy(cfg.Schedule.OnZoneError)
	if err != nil {
		return nil, err
	}

	zones := make([]domain.DisplayZone, 0, len(cfg.Schedule.DisplayZones))
	for _, z := range cfg.Schedule.DisplayZones {
		zones = append(zones, domain.DisplayZone{ID: z.ID, Label: z.Label, Flag: z.Flag})
	}

	return app.NewPublishCycle(app.CycleConfig{
		ChannelID: cfg.Bot.ChannelID,
		Reference: domain.DisplayZone{
			ID:    cfg.Schedule.ReferenceZone,
			Label: cfg.Schedule.ReferenceTag,
			Flag:  cfg.Schedule.ReferenceFlag,
		},
		DisplayZones: zones,
		ImagePaths:   cfg.Images.Paths,
		Composer: domain.NewCaptionComposer(
			domain.WithTitle(cfg.Schedule.Title),
			domain.WithFooter(cfg.Schedule.Footer),
			domain.WithPolicy(policy),
		),
		Fetcher:   fetcher,
		Publisher: publisher,
		Observer:  observer,
		Logger:    logger,
	})
}
