package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/resonance-bot/internal/domain"
	"github.com/jsamuelsen/resonance-bot/internal/mocks"
	"github.com/jsamuelsen/resonance-bot/internal/ports"
)

// fakeClock advances only when the runner waits or a cycle says it took time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// After advances the clock by d and fires immediately.
func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.Advance(d)

	ch := make(chan time.Time, 1)
	ch <- c.Now()

	return ch
}

// cycleFunc adapts a function to the Cycle interface.
type cycleFunc func(ctx context.Context) error

func (f cycleFunc) Run(ctx context.Context) error { return f(ctx) }

var runnerAnchor = time.Date(2024, 3, 14, 3, 0, 0, 0, time.UTC) // 10:00 in Krasnoyarsk

func newTestRunner(t *testing.T, clock *fakeClock, cycle Cycle, mutate ...func(*RunnerConfig)) *JobRunner {
	t.Helper()

	cfg := RunnerConfig{
		Cycle:    cycle,
		Schedule: domain.ScheduleSpec{InitialDelay: 14 * time.Hour, Period: 6 * time.Hour},
		Anchor:   runnerAnchor,
		Logger:   discardLogger(),
		Now:      clock.Now,
		After:    clock.After,
	}

	for _, m := range mutate {
		m(&cfg)
	}

	r, err := NewJobRunner(cfg)
	require.NoError(t, err)

	return r
}

func TestNewJobRunner_PanicsWithoutCycle(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = NewJobRunner(RunnerConfig{Schedule: domain.ScheduleSpec{Period: time.Hour}})
	})
}

func TestNewJobRunner_InvalidSchedule(t *testing.T) {
	noop := cycleFunc(func(context.Context) error { return nil })

	_, err := NewJobRunner(RunnerConfig{Cycle: noop})
	assert.True(t, domain.IsConfig(err))

	_, err = NewJobRunner(RunnerConfig{
		Cycle:    noop,
		Schedule: domain.ScheduleSpec{InitialDelay: -time.Second, Period: time.Hour},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNewJobRunner_Defaults(t *testing.T) {
	r, err := NewJobRunner(RunnerConfig{
		Cycle:    cycleFunc(func(context.Context) error { return nil }),
		Schedule: domain.ScheduleSpec{InitialDelay: time.Hour, Period: 6 * time.Hour},
	})
	require.NoError(t, err)

	s := r.Status()
	assert.Equal(t, StateIdle, s.State)
	assert.WithinDuration(t, time.Now().Add(time.Hour), r.FirstFire(), time.Minute)
	assert.Equal(t, r.FirstFire(), s.NextFire)
	assert.Equal(t, 6*time.Hour, s.Period)
}

func TestJobRunner_FiresOnGrid(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fires []time.Time

	r := newTestRunner(t, clock, cycleFunc(func(context.Context) error {
		fires = append(fires, clock.Now())
		if len(fires) == 4 {
			cancel()
		}

		return nil
	}))

	require.NoError(t, r.Run(ctx))

	first := time.Date(2024, 3, 14, 17, 0, 0, 0, time.UTC) // next Krasnoyarsk midnight
	assert.Equal(t, []time.Time{
		first,
		first.Add(6 * time.Hour),
		first.Add(12 * time.Hour),
		first.Add(18 * time.Hour),
	}, fires)

	for i := 1; i < len(fires); i++ {
		assert.Equal(t, 6*time.Hour, fires[i].Sub(fires[i-1]))
	}

	s := r.Status()
	assert.Equal(t, StateStopped, s.State)
	assert.Equal(t, 4, s.Cycles)
	assert.Equal(t, 0, s.Failures)
	assert.Equal(t, ports.CycleResultSuccess, s.LastResult)
	assert.Equal(t, first.Add(18*time.Hour), s.LastSuccess)
}

func TestJobRunner_NoOverlap(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		inFlight    atomic.Int32
		maxInFlight atomic.Int32
		runs        atomic.Int32
	)

	r := newTestRunner(t, clock, cycleFunc(func(context.Context) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)

		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}

		clock.Advance(5 * time.Hour)

		if runs.Add(1) == 5 {
			cancel()
		}

		return nil
	}))

	require.NoError(t, r.Run(ctx))

	assert.Equal(t, int32(1), maxInFlight.Load())
	assert.Equal(t, 0, r.Status().Skipped)
}

func TestJobRunner_SkipsMissedTicks(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fires []time.Time

	r := newTestRunner(t, clock, cycleFunc(func(context.Context) error {
		fires = append(fires, clock.Now())

		switch len(fires) {
		case 1:
			clock.Advance(15 * time.Hour) // overruns two and a half periods
		case 2:
			cancel()
		}

		return nil
	}))

	require.NoError(t, r.Run(ctx))

	first := r.FirstFire()
	require.Len(t, fires, 2)
	assert.Equal(t, first, fires[0])
	assert.Equal(t, first.Add(18*time.Hour), fires[1], "next grid point after the overrun")
	assert.Equal(t, 2, r.Status().Skipped)
}

func TestJobRunner_FailuresDoNotStopRunner(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs int

	r := newTestRunner(t, clock, cycleFunc(func(context.Context) error {
		runs++

		switch runs {
		case 1:
			return domain.NewFetchError("shm.jpg", "image not found", nil)
		case 2:
			return domain.NewPublishError(-100, "request failed", errors.New("reset"))
		default:
			cancel()
			return nil
		}
	}))

	require.NoError(t, r.Run(ctx))

	s := r.Status()
	assert.Equal(t, 3, s.Cycles)
	assert.Equal(t, 2, s.Failures)
	assert.Equal(t, ports.CycleResultSuccess, s.LastResult)
	assert.Empty(t, s.LastError)
	assert.Equal(t, r.FirstFire().Add(12*time.Hour), s.LastSuccess)
}

func TestJobRunner_RecordsLastFailure(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newTestRunner(t, clock, cycleFunc(func(context.Context) error {
		cancel()
		return domain.NewFetchError("srq.jpg", "not an image", nil)
	}))

	require.NoError(t, r.Run(ctx))

	s := r.Status()
	assert.Equal(t, ports.CycleResultFetchError, s.LastResult)
	assert.Equal(t, "fetch srq.jpg: not an image", s.LastError)
	assert.True(t, s.LastSuccess.IsZero())
}

func TestJobRunner_LastErrorHidesBotToken(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const token = "123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw1"

	r := newTestRunner(t, clock, cycleFunc(func(context.Context) error {
		cancel()
		return domain.NewPublishError(-100, "request failed",
			errors.New(`Post "https://api.telegram.org/bot`+token+`/sendMediaGroup": connection reset by peer`))
	}))

	require.NoError(t, r.Run(ctx))

	s := r.Status()
	assert.NotContains(t, s.LastError, token)
	assert.Contains(t, s.LastError, "/bot[REDACTED]/sendMediaGroup")
}

func TestJobRunner_CycleDeadlineIsOnePeriod(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		deadline time.Time
		hasDL    bool
	)

	r := newTestRunner(t, clock, cycleFunc(func(ctx context.Context) error {
		deadline, hasDL = ctx.Deadline()
		cancel()

		return nil
	}))

	started := time.Now()

	require.NoError(t, r.Run(ctx))

	require.True(t, hasDL)
	assert.WithinDuration(t, started.Add(6*time.Hour), deadline, time.Minute)
}

func TestJobRunner_StopsWhileWaiting(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32

	r := newTestRunner(t, clock, cycleFunc(func(context.Context) error {
		runs.Add(1)
		return nil
	}), func(c *RunnerConfig) {
		c.After = func(time.Duration) <-chan time.Time { return make(chan time.Time) }
	})

	done := make(chan error, 1)

	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return r.Status().State == StateWaiting }, time.Second, time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}

	assert.Equal(t, int32(0), runs.Load())
	assert.Equal(t, StateStopped, r.Status().State)
}

func TestJobRunner_RunTwice(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(t, clock, cycleFunc(func(context.Context) error { return nil }))

	require.NoError(t, r.Run(ctx))
	assert.ErrorIs(t, r.Run(ctx), ErrRunnerStarted)
}

func TestJobRunner_NotifiesObserver(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observer := mocks.NewMockCycleObserver(t)
	first := runnerAnchor.Add(14 * time.Hour)

	observer.EXPECT().NextFireScheduled(first).Return().Once()
	observer.EXPECT().NextFireScheduled(first.Add(6 * time.Hour)).Return().Once()

	r := newTestRunner(t, clock, cycleFunc(func(context.Context) error {
		cancel()
		return nil
	}), func(c *RunnerConfig) { c.Observer = observer })

	require.NoError(t, r.Run(ctx))

	observer.AssertNotCalled(t, "CycleFinished", mock.Anything, mock.Anything)
}

func TestJobRunner_Check(t *testing.T) {
	clock := newFakeClock(runnerAnchor)
	r := newTestRunner(t, clock, cycleFunc(func(context.Context) error { return nil }))

	assert.Equal(t, "scheduler", r.Name())
	require.EqualError(t, r.Check(context.Background()), "runner not started")

	r.setState(StateWaiting)
	require.NoError(t, r.Check(context.Background()))

	clock.Advance(14*time.Hour + 2*time.Minute)
	require.EqualError(t, r.Check(context.Background()), "runner is 2m0s past its next fire")

	r.setState(StateFiring)
	require.NoError(t, r.Check(context.Background()))

	clock.Advance(7 * time.Hour)
	require.EqualError(t, r.Check(context.Background()), "cycle running for 7h2m0s")

	r.setState(StateStopped)
	require.EqualError(t, r.Check(context.Background()), "runner stopped")
}

func TestRunnerState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "waiting", StateWaiting.String())
	assert.Equal(t, "firing", StateFiring.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unknown", RunnerState(42).String())
}
