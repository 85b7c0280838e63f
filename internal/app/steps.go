package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/platform/logging"
	"github.com/jsamuelsen/resonance-bot/internal/platform/telemetry"
	"github.com/jsamuelsen/resonance-bot/internal/ports"
)

// A publish cycle runs three steps in order: Compose → Fetch → Publish.
// A failed step aborts the cycle; later steps never run, so a fetch failure
// can never lead to a partial publish.

// CycleStep names a stage of a publish cycle in logs and spans.
type CycleStep string

const (
	StepCompose CycleStep = "compose"
	StepFetch   CycleStep = "fetch"
	StepPublish CycleStep = "publish"
)

// runStep executes one stage under a child span with debug timing logs.
// The error from fn is returned unchanged.
func runStep(ctx context.Context, step CycleStep, fn func(context.Context) error) error {
	logger := logging.FromContext(ctx).With(slog.String("step", string(step)))

	ctx, span := telemetry.StartSpan(ctx, "cycle."+string(step),
		attribute.String("cycle.id", logging.CycleIDFromContext(ctx)),
	)
	start := time.Now()

	logger.DebugContext(ctx, "starting step")

	err := fn(ctx)
	telemetry.EndSpan(span, err)

	if err != nil {
		logger.WarnContext(ctx, "step failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)

		return err
	}

	logger.DebugContext(ctx, "step completed", slog.Duration("duration", time.Since(start)))

	return nil
}

// ClassifyResult maps a cycle error to its metrics label.
func ClassifyResult(err error) ports.CycleResult {
	switch {
	case err == nil:
		return ports.CycleResultSuccess
	case domain.IsFetch(err):
		return ports.CycleResultFetchError
	case domain.IsPublish(err):
		return ports.CycleResultPublishError
	default:
		return ports.CycleResultError
	}
}
