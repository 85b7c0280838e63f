// Package telegram delivers media groups to a Telegram channel through the Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jsamuelsen/resonance-bot/internal/adapters/clients"
	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/platform/logging"
)

// Bot API limits for sendMediaGroup.
const (
	MinMediaGroupItems = 2
	MaxMediaGroupItems = 10
	MaxCaptionLength   = 1024
)

// botAPI is the subset of *tgbotapi.BotAPI the publisher uses.
type botAPI interface {
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	GetMe() (tgbotapi.User, error)
}

// Circuit reports the breaker guarding the Bot API host. *clients.Client implements it.
type Circuit interface {
	ServiceName() string
	Circuit() clients.CircuitSnapshot
}

// Config contains configuration for the publisher.
type Config struct {
	Token string

	// Endpoint is the Bot API URL format taking the token and the method name.
	// Defaults to tgbotapi.APIEndpoint.
	Endpoint string

	// HTTPClient sends the Bot API requests. Defaults to http.DefaultClient.
	HTTPClient tgbotapi.HTTPClient

	// Circuit backs the readiness check. Without it the publisher always reports ready.
	Circuit Circuit

	Logger *slog.Logger
}

// Publisher implements ports.MediaPublisher, ports.IdentityProvider and ports.HealthChecker.
type Publisher struct {
	// api returns a client whose requests carry ctx.
	api     func(ctx context.Context) botAPI
	circuit Circuit
	logger  *slog.Logger
}

// New connects to the Bot API. The token is verified with a getMe call.
func New(ctx context.Context, cfg Config) (*Publisher, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, domain.NewConfigError("bot.token", "required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	_ = tgbotapi.SetLogger(botLogger{logger: logger})

	api, err := await(ctx, func() (*tgbotapi.BotAPI, error) {
		return tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, httpClient)
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to bot api: %w", err)
	}

	api.Debug = logger.Enabled(ctx, logging.LevelTrace)

	p := newPublisher(api, logger)
	p.api = bindContext(api)
	p.circuit = cfg.Circuit

	return p, nil
}

func newPublisher(api botAPI, logger *slog.Logger) *Publisher {
	return &Publisher{
		api:    func(context.Context) botAPI { return api },
		logger: logger.With(slog.String("component", "telegram.Publisher")),
	}
}

// bindContext hands out a shallow copy of api per call so that the cycle id,
// logger and span in ctx reach the HTTP client.
func bindContext(api *tgbotapi.BotAPI) func(ctx context.Context) botAPI {
	return func(ctx context.Context) botAPI {
		bound := *api
		bound.Client = contextDoer{ctx: ctx, next: api.Client}

		return &bound
	}
}

// contextDoer replaces the library's background request context.
type contextDoer struct {
	ctx  context.Context //nolint:containedctx // scoped to a single Bot API call
	next tgbotapi.HTTPClient
}

func (d contextDoer) Do(req *http.Request) (*http.Response, error) {
	return d.next.Do(req.WithContext(d.ctx))
}

// SendMediaGroup sends items as one album. Only the first item's caption is shown.
// Every failure is a *domain.PublishError.
func (p *Publisher) SendMediaGroup(ctx context.Context, channelID int64, items []domain.MediaItem) error {
	if err := validateItems(channelID, items); err != nil {
		return err
	}

	files := make([]any, len(items))
	for i, item := range items {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileBytes{Name: item.Filename, Bytes: item.Bytes})
		photo.Caption = item.Caption
		files[i] = photo
	}

	group := tgbotapi.NewMediaGroup(channelID, files)

	logger := logging.FromContext(ctx)
	logger.Log(ctx, logging.LevelTrace, "sending media group",
		slog.Int64("channel_id", channelID),
		slog.Int("items", len(items)),
	)

	api := p.api(ctx)

	msgs, err := await(ctx, func() ([]tgbotapi.Message, error) {
		return api.SendMediaGroup(group)
	})
	if err != nil {
		return mapSendError(channelID, err)
	}

	logger.Info("media group sent",
		slog.Int64("channel_id", channelID),
		slog.Int("messages", len(msgs)),
	)

	return nil
}

func validateItems(channelID int64, items []domain.MediaItem) error {
	switch {
	case len(items) == 0:
		return domain.NewPublishError(channelID, "empty media group", nil)
	case len(items) < MinMediaGroupItems:
		return domain.NewPublishError(channelID,
			fmt.Sprintf("media group needs at least %d items, got %d", MinMediaGroupItems, len(items)), nil)
	case len(items) > MaxMediaGroupItems:
		return domain.NewPublishError(channelID,
			fmt.Sprintf("media group allows at most %d items, got %d", MaxMediaGroupItems, len(items)), nil)
	}

	for i, item := range items {
		if len(item.Bytes) == 0 {
			return domain.NewPublishError(channelID, fmt.Sprintf("item %d (%s) is empty", i, item.Filename), nil)
		}

		if n := utf8.RuneCountInString(item.Caption); n > MaxCaptionLength {
			return domain.NewPublishError(channelID,
				fmt.Sprintf("caption is %d characters, limit %d", n, MaxCaptionLength), nil)
		}
	}

	return nil
}

func mapSendError(channelID int64, err error) error {
	err = redactURLError(err)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewPublishError(channelID, "cancelled", err)
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		reason := fmt.Sprintf("bot api error %d: %s", apiErr.Code, apiErr.Message)
		if apiErr.RetryAfter > 0 {
			reason += fmt.Sprintf(" (retry after %ds)", apiErr.RetryAfter)
		}

		return domain.NewPublishError(channelID, reason, err)
	}

	if errors.Is(err, clients.ErrRequestFailed) {
		return domain.NewPublishError(channelID, "", err)
	}

	return domain.NewPublishError(channelID, "request failed", err)
}

// redactURLError strips the bot token from the request URL of a transport error.
func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	safe := &url.Error{Op: urlErr.Op, URL: logging.RedactURL(urlErr.URL), Err: urlErr.Err}
	if errors.Is(err, clients.ErrRequestFailed) {
		return fmt.Errorf("%w: %w", clients.ErrRequestFailed, safe)
	}

	return safe
}

// Self returns the bot account behind the token.
// Implements ports.IdentityProvider.
func (p *Publisher) Self(ctx context.Context) (domain.BotIdentity, error) {
	user, err := await(ctx, p.api(ctx).GetMe)
	if err != nil {
		return domain.BotIdentity{}, fmt.Errorf("get bot identity: %w", redactURLError(err))
	}

	return domain.BotIdentity{
		ID:          user.ID,
		DisplayName: strings.TrimSpace(user.FirstName + " " + user.LastName),
		Username:    user.UserName,
	}, nil
}

// Name returns the health check name.
// Implements ports.HealthChecker.
func (p *Publisher) Name() string {
	return "telegram"
}

// Check reports the Bot API unhealthy while its circuit is open. No request is
// sent; the token was verified by New.
// Implements ports.HealthChecker.
func (p *Publisher) Check(_ context.Context) error {
	if p.circuit == nil {
		return nil
	}

	snap := p.circuit.Circuit()
	if snap.State == clients.StateOpen {
		return fmt.Errorf("%s circuit open, next probe at %s",
			p.circuit.ServiceName(), snap.RetryAt.UTC().Format(time.RFC3339))
	}

	return nil
}

// await runs fn and returns early when ctx is done.
// Bot API calls take no context; an abandoned fn runs until the HTTP client gives up.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}

	done := make(chan result, 1)

	go func() {
		val, err := fn()
		done <- result{val: val, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.val, r.err
	}
}

// botLogger routes the library's debug output through slog.
type botLogger struct {
	logger *slog.Logger
}

func (l botLogger) Println(v ...any) {
	l.logger.Log(context.Background(), logging.LevelTrace, strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l botLogger) Printf(format string, v ...any) {
	l.logger.Log(context.Background(), logging.LevelTrace, fmt.Sprintf(format, v...))
}
