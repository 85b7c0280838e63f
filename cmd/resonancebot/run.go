package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/resonance-bot/internal/adapters/http"
	"github.com/jsamuelsen/resonance-bot/internal/adapters/http/handlers"
	"github.com/jsamuelsen/resonance-bot/internal/app"
	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/platform/config"
	"github.com/jsamuelsen/resonance-bot/internal/platform/logging"
	"github.com/jsamuelsen/resonance-bot/internal/platform/metrics"
	"github.com/jsamuelsen/resonance-bot/internal/platform/telemetry"
	"github.com/jsamuelsen/resonance-bot/internal/ports"
)

const healthCheckTimeout = 5 * time.Second

func newRunCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the publish job until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJob(cmd.Context(), root)
		},
	}
}

// runJob starts the runner and, when enabled, the ops HTTP server. It returns
// after ctx is cancelled and both have stopped.
func runJob(ctx context.Context, root *rootOptions) error {
	cfg, err := loadConfig(root, true)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, os.Stdout)
	logging.SetDefault(logger)

	logger.Info("starting resonance bot",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	recorder := metrics.New()

	timeout, err := requestTimeout(cfg)
	if err != nil {
		return err
	}

	fetcher, err := newImageFetcher(cfg, timeout, recorder, logger)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(ctx, cfg, timeout, logger)
	if err != nil {
		return err
	}

	if err := announceIdentity(ctx, publisher, logger); err != nil {
		return err
	}

	cycle, err := newCycle(cfg, fetcher, publisher, recorder, logger)
	if err != nil {
		return err
	}

	now := time.Now()

	spec, err := domain.NewScheduleSpec(now, cfg.Schedule.ReferenceZone, cfg.Schedule.UpdateHours)
	if err != nil {
		return err
	}

	runner, err := app.NewJobRunner(app.RunnerConfig{
		Cycle:    cycle,
		Schedule: spec,
		Anchor:   now,
		Observer: recorder,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	refLoc, err := domain.LoadZone(cfg.Schedule.ReferenceZone)
	if err != nil {
		return err
	}

	first := runner.FirstFire()
	logger.Info("first publish scheduled",
		slog.String("reference_zone", cfg.Schedule.ReferenceZone),
		slog.String("local", first.In(refLoc).Format(time.DateTime)),
		slog.String("utc", first.UTC().Format(time.DateTime)),
		slog.Duration("initial_delay", spec.InitialDelay),
		slog.Duration("period", spec.Period),
	)

	registry := ports.NewHealthRegistry(healthCheckTimeout)
	for _, checker := range []ports.HealthChecker{runner, fetcher, publisher} {
		if err := registry.Register(checker); err != nil {
			return fmt.Errorf("registering health check: %w", err)
		}
	}

	var server *http.Server
	if cfg.Server.Enabled {
		server, err = newOpsServer(cfg, logger, registry, recorder, runner, cycle)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runner.Run(gctx)
	})

	if server != nil {
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	err = g.Wait()

	logger.Info("resonance bot stopped", slog.String("state", runner.Status().State.String()))

	return err
}

func newOpsServer(
	cfg *config.Config,
	logger *slog.Logger,
	registry ports.HealthRegistry,
	recorder *metrics.Recorder,
	runner *app.JobRunner,
	cycle *app.PublishCycle,
) (*http.Server, error) {
	statusHandler, err := handlers.NewStatusHandler(runner, cycle, cfg.Schedule.ReferenceZone)
	if err != nil {
		return nil, err
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		ServiceName:   cfg.Telemetry.ServiceName,
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo(Version, Commit, BuildTime), recorder.Handler()),
		StatusHandler: statusHandler,
		Timeout:       http.DefaultRequestTimeout,
	})

	return server, nil
}

// announceIdentity logs who the bot token belongs to. A failure here means the
// token is unusable, so startup stops.
func announceIdentity(ctx context.Context, identity ports.IdentityProvider, logger *slog.Logger) error {
	me, err := identity.Self(ctx)
	if err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("I am user %d and my name is %s", me.ID, me.DisplayName),
		slog.String("username", me.Username),
	)

	return nil
}
