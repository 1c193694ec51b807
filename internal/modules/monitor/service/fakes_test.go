package service_test

import (
	"context"
	"sync"
	"time"

	"trafficwatch/internal/modules/monitor/domain"
	"trafficwatch/internal/modules/monitor/service"
)

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After advances the clock by d and fires immediately.
func (c *steppingClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *steppingClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeFetcher struct {
	hours float64
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context) (float64, error) {
	f.calls++
	return f.hours, f.err
}

type memoryStore struct {
	samples   []domain.Sample
	appendErr error
	loadErr   error
}

func (m *memoryStore) Initialize(context.Context) error { return nil }

func (m *memoryStore) Append(_ context.Context, sample domain.Sample) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.samples = append(m.samples, sample)
	return nil
}

func (m *memoryStore) Load(context.Context) ([]domain.Sample, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]domain.Sample(nil), m.samples...), nil
}

func (m *memoryStore) LoadAll(ctx context.Context) []domain.Sample {
	samples, err := m.Load(ctx)
	if err != nil {
		return []domain.Sample{}
	}
	return samples
}

func (m *memoryStore) Path() string { return "memory" }

type fakeVisualizer struct {
	rendered [][]domain.Sample
	at       []time.Time
	err      error
}

func (f *fakeVisualizer) Render(_ context.Context, samples []domain.Sample, at time.Time) (domain.Artifacts, error) {
	f.rendered = append(f.rendered, samples)
	f.at = append(f.at, at)
	if f.err != nil {
		return domain.Artifacts{}, f.err
	}
	if len(samples) == 0 {
		return domain.Artifacts{}, nil
	}
	return domain.Artifacts{Snapshot: "snap.png", Latest: "latest.png"}, nil
}

type fakeIndex struct {
	upserted  []domain.Sample
	resets    int
	stats     domain.Stats
	statsErr  error
	upsertErr error
	rangeErr  error
	ranges    int
}

func (f *fakeIndex) Reset(context.Context) error {
	f.resets++
	f.upserted = nil
	return nil
}

func (f *fakeIndex) Upsert(_ context.Context, sample domain.Sample) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, sample)
	return nil
}

func (f *fakeIndex) Count(context.Context) (int, error) {
	return len(f.upserted), nil
}

func (f *fakeIndex) Stats(context.Context, time.Time, time.Time) (domain.Stats, error) {
	return f.stats, f.statsErr
}

func (f *fakeIndex) Range(_ context.Context, from, to time.Time, limit int) ([]domain.Sample, error) {
	f.ranges++
	if f.rangeErr != nil {
		return nil, f.rangeErr
	}
	out := service.FilterRange(append([]domain.Sample(nil), f.upserted...), from, to)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeRecorder struct {
	outcomes []domain.CycleOutcome
	reasons  []string
	recorded []float64
}

func (f *fakeRecorder) CycleFinished(outcome domain.CycleOutcome, _ time.Duration) {
	f.outcomes = append(f.outcomes, outcome)
}
func (f *fakeRecorder) FetchFailed(reason string)    { f.reasons = append(f.reasons, reason) }
func (f *fakeRecorder) SampleRecorded(hours float64) { f.recorded = append(f.recorded, hours) }
