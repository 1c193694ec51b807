package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trafficwatch/internal/modules/monitor/domain"
	"trafficwatch/internal/modules/monitor/service"
)

type scriptedCycler struct {
	mu       sync.Mutex
	clock    *steppingClock
	at       []time.Time
	cost     time.Duration
	panicOn  int
	stopAt   int
	cancel   context.CancelFunc
	ctxAlive []bool
}

func (c *scriptedCycler) RunCycle(ctx context.Context, at time.Time) domain.CycleResult {
	c.mu.Lock()
	c.at = append(c.at, at)
	n := len(c.at)
	c.ctxAlive = append(c.ctxAlive, ctx.Err() == nil)
	c.mu.Unlock()

	c.clock.advance(c.cost)
	if n == c.stopAt {
		c.cancel()
	}
	if n == c.panicOn {
		panic("boom")
	}
	return domain.CycleResult{At: at}
}

func runScheduler(t *testing.T, cadence time.Duration, cycler *scriptedCycler) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cycler.cancel = cancel
	sched := service.NewScheduler(cycler.clock, domain.Boundary{Cadence: cadence, Location: time.UTC}, cycler, nil)

	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("scheduler did not stop")
		return nil
	}
}

func TestSchedulerFiresOncePerBoundary(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 4, 1, 10, 15, 42, 0, time.UTC)
	cycler := &scriptedCycler{clock: &steppingClock{now: start}, cost: 2 * time.Second, stopAt: 3}

	err := runScheduler(t, time.Minute, cycler)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	want := []time.Time{
		time.Date(2026, 4, 1, 10, 16, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 10, 17, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 10, 18, 0, 0, time.UTC),
	}
	if len(cycler.at) != len(want) {
		t.Fatalf("expected %d cycles, got %v", len(want), cycler.at)
	}
	for i := range want {
		if !cycler.at[i].Equal(want[i]) {
			t.Fatalf("cycle %d: expected %v, got %v", i, want[i], cycler.at[i])
		}
	}
}

func TestSchedulerCycleContextSurvivesCancellation(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 4, 1, 10, 15, 0, 0, time.UTC)
	cycler := &scriptedCycler{clock: &steppingClock{now: start}, stopAt: 1}
	_ = runScheduler(t, time.Minute, cycler)
	if len(cycler.ctxAlive) != 1 || !cycler.ctxAlive[0] {
		t.Fatalf("cycle context must not be cancelled at start: %v", cycler.ctxAlive)
	}
}

func TestSchedulerSkipsBoundariesAfterOverrun(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 4, 1, 10, 15, 30, 0, time.UTC)
	cycler := &scriptedCycler{clock: &steppingClock{now: start}, cost: 150 * time.Second, stopAt: 2}
	_ = runScheduler(t, time.Minute, cycler)

	want := []time.Time{
		time.Date(2026, 4, 1, 10, 16, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 10, 19, 0, 0, time.UTC),
	}
	if len(cycler.at) != 2 || !cycler.at[0].Equal(want[0]) || !cycler.at[1].Equal(want[1]) {
		t.Fatalf("expected %v, got %v", want, cycler.at)
	}
}

func TestSchedulerSurvivesPanickingCycle(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 4, 1, 10, 0, 30, 0, time.UTC)
	cycler := &scriptedCycler{clock: &steppingClock{now: start}, panicOn: 1, stopAt: 2}
	err := runScheduler(t, time.Minute, cycler)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if len(cycler.at) != 2 {
		t.Fatalf("expected loop to continue after panic, got %d cycles", len(cycler.at))
	}
}

func TestSchedulerHourlyCadence(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 4, 1, 10, 15, 0, 0, time.UTC)
	cycler := &scriptedCycler{clock: &steppingClock{now: start}, stopAt: 2}
	_ = runScheduler(t, time.Hour, cycler)
	if len(cycler.at) != 2 || !cycler.at[1].Equal(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected hourly boundaries %v", cycler.at)
	}
}

func TestSchedulerRejectsInvalidCadence(t *testing.T) {
	t.Parallel()
	cycler := &scriptedCycler{clock: &steppingClock{now: time.Now()}}
	sched := service.NewScheduler(cycler.clock, domain.Boundary{Cadence: 7 * time.Minute}, cycler, nil)
	if err := sched.Run(context.Background()); err == nil {
		t.Fatalf("expected invalid cadence error")
	}
}
