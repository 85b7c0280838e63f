package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/platform/logging"
	"github.com/jsamuelsen/resonance-bot/internal/ports"
)

// ErrRunnerStarted is returned when Run is called more than once.
var ErrRunnerStarted = errors.New("runner already started")

// stallGrace is how far past its next fire a waiting runner may be before it reports unhealthy.
const stallGrace = time.Minute

// RunnerState is the lifecycle state of a JobRunner.
//
//	Idle → Waiting → Firing → Waiting → … → Stopped
type RunnerState int

const (
	StateIdle RunnerState = iota
	StateWaiting
	StateFiring
	StateStopped
)

// String returns the lowercase state name.
func (s RunnerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateFiring:
		return "firing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Cycle is one unit of scheduled work.
type Cycle interface {
	Run(ctx context.Context) error
}

// Status is a point-in-time snapshot of the runner.
type Status struct {
	State     RunnerState
	FirstFire time.Time
	NextFire  time.Time
	Period    time.Duration

	LastFire     time.Time
	LastResult   ports.CycleResult
	LastError    string
	LastDuration time.Duration
	LastSuccess  time.Time

	Cycles   int
	Failures int

	// Skipped counts grid points missed because a cycle overran its period.
	Skipped int
}

// RunnerConfig configures a JobRunner.
type RunnerConfig struct {
	Cycle    Cycle
	Schedule domain.ScheduleSpec

	// Anchor is the instant the schedule was computed at. The first fire is
	// Anchor + Schedule.InitialDelay. Defaults to Now() at construction.
	Anchor time.Time

	Observer ports.CycleObserver
	Logger   *slog.Logger

	// Now and After are the clock. They default to time.Now and time.After.
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// JobRunner fires a Cycle at first, first+P, first+2P, … until its context is
// cancelled. Cycles run on the Run goroutine, so two cycles never overlap.
// A cycle that overruns skips the grid points it missed.
type JobRunner struct {
	cycle    Cycle
	first    time.Time
	period   time.Duration
	observer ports.CycleObserver
	logger   *slog.Logger
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time

	mu     sync.RWMutex
	status Status
}

// NewJobRunner creates an idle runner.
// Panics if Cycle is nil.
func NewJobRunner(cfg RunnerConfig) (*JobRunner, error) {
	if cfg.Cycle == nil {
		panic("JobRunner: Cycle is required")
	}

	if cfg.Schedule.Period <= 0 {
		return nil, domain.NewInvalidConfigError("schedule.period", cfg.Schedule.Period, "must be positive")
	}

	if cfg.Schedule.InitialDelay < 0 {
		return nil, domain.NewInvalidConfigError("schedule.initial_delay", cfg.Schedule.InitialDelay, "must not be negative")
	}

	r := &JobRunner{
		cycle:    cfg.Cycle,
		period:   cfg.Schedule.Period,
		observer: cfg.Observer,
		logger:   cfg.Logger,
		now:      cfg.Now,
		after:    cfg.After,
	}

	if r.observer == nil {
		r.observer = ports.NopCycleObserver{}
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	r.logger = r.logger.With(slog.String("component", "app.JobRunner"))

	if r.now == nil {
		r.now = time.Now
	}

	if r.after == nil {
		r.after = time.After
	}

	anchor := cfg.Anchor
	if anchor.IsZero() {
		anchor = r.now()
	}

	r.first = anchor.Add(cfg.Schedule.InitialDelay)
	r.status = Status{
		State:     StateIdle,
		FirstFire: r.first,
		NextFire:  r.first,
		Period:    r.period,
	}

	return r, nil
}

// FirstFire returns the first aligned fire time.
func (r *JobRunner) FirstFire() time.Time {
	return r.first
}

// Run blocks until ctx is cancelled. It returns nil on cancellation and
// ErrRunnerStarted if the runner has already been started.
func (r *JobRunner) Run(ctx context.Context) error {
	if !r.start() {
		return ErrRunnerStarted
	}
	defer r.setState(StateStopped)

	ctx = logging.WithContext(ctx, r.logger)
	next := r.first

	r.logger.InfoContext(ctx, "runner started",
		slog.Time("first_fire", next),
		slog.Duration("period", r.period),
	)

	for {
		r.scheduled(next)

		wait := max(next.Sub(r.now()), 0)

		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "runner stopped")
			return nil
		case <-r.after(wait):
		}

		if ctx.Err() != nil {
			r.logger.InfoContext(ctx, "runner stopped")
			return nil
		}

		r.fire(ctx, next)

		following := domain.NextFire(r.now(), r.first, r.period)
		if !following.After(next) {
			// The wall clock went backwards during the cycle.
			following = next.Add(r.period)
		}

		if missed := int(following.Sub(next)/r.period) - 1; missed > 0 {
			r.logger.WarnContext(ctx, "cycle overran its period, skipping missed fires",
				slog.Int("skipped", missed),
				slog.Time("next_fire", following),
			)

			r.mu.Lock()
			r.status.Skipped += missed
			r.mu.Unlock()
		}

		next = following
	}
}

// fire runs one cycle bounded by a deadline of one period and records the outcome.
func (r *JobRunner) fire(ctx context.Context, at time.Time) {
	r.setState(StateFiring)

	cycleCtx, cancel := context.WithTimeout(ctx, r.period)
	start := time.Now()
	err := r.cycle.Run(cycleCtx)
	duration := time.Since(start)

	cancel()

	r.record(at, duration, err)

	if err != nil {
		r.logger.WarnContext(ctx, "cycle failed, waiting for next fire", slog.Any("error", err))
	}
}

func (r *JobRunner) start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.State != StateIdle {
		return false
	}

	r.status.State = StateWaiting

	return true
}

func (r *JobRunner) setState(s RunnerState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.State = s
}

func (r *JobRunner) scheduled(next time.Time) {
	r.mu.Lock()
	r.status.State = StateWaiting
	r.status.NextFire = next
	r.mu.Unlock()

	r.observer.NextFireScheduled(next)
}

func (r *JobRunner) record(at time.Time, duration time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.Cycles++
	r.status.LastFire = at
	r.status.LastDuration = duration
	r.status.LastResult = ClassifyResult(err)
	r.status.LastError = ""

	if err != nil {
		r.status.Failures++
		// Served by the ops endpoint; the message must never carry the bot token.
		r.status.LastError = logging.RedactURL(err.Error())

		return
	}

	r.status.LastSuccess = at
}

// Status returns a snapshot safe to read from any goroutine.
func (r *JobRunner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.status
}

// Name returns the health check name.
// Implements ports.HealthChecker.
func (r *JobRunner) Name() string {
	return "scheduler"
}

// Check fails when the runner is not running or has missed its next fire.
// Implements ports.HealthChecker.
func (r *JobRunner) Check(_ context.Context) error {
	s := r.Status()

	switch s.State {
	case StateIdle:
		return errors.New("runner not started")
	case StateStopped:
		return errors.New("runner stopped")
	case StateWaiting:
		if late := r.now().Sub(s.NextFire); late > stallGrace {
			return fmt.Errorf("runner is %s past its next fire", late.Round(time.Second))
		}
	case StateFiring:
		if overrun := r.now().Sub(s.NextFire); overrun > r.period+stallGrace {
			return fmt.Errorf("cycle running for %s", overrun.Round(time.Second))
		}
	}

	return nil
}
