package out

import (
	"context"
	"time"

	"trafficwatch/internal/modules/monitor/domain"
)

// Fetcher returns an unrounded duration in hours. Every failure wraps
// apperrors.ErrNoValue.
type Fetcher interface {
	Fetch(ctx context.Context) (float64, error)
}

type HistoryStore interface {
	Initialize(ctx context.Context) error
	Append(ctx context.Context, sample domain.Sample) error
	// Load reports read and decode failures.
	Load(ctx context.Context) ([]domain.Sample, error)
	// LoadAll returns an empty history instead of failing.
	LoadAll(ctx context.Context) []domain.Sample
	Path() string
}

type HistoryIndex interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, sample domain.Sample) error
	Count(ctx context.Context) (int, error)
	Stats(ctx context.Context, from, to time.Time) (domain.Stats, error)
	Range(ctx context.Context, from, to time.Time, limit int) ([]domain.Sample, error)
}

type Visualizer interface {
	Render(ctx context.Context, samples []domain.Sample, at time.Time) (domain.Artifacts, error)
}

type Recorder interface {
	CycleFinished(outcome domain.CycleOutcome, elapsed time.Duration)
	FetchFailed(reason string)
	SampleRecorded(hours float64)
}

type NopRecorder struct{}

func (NopRecorder) CycleFinished(domain.CycleOutcome, time.Duration) {}
func (NopRecorder) FetchFailed(string)                               {}
func (NopRecorder) SampleRecorded(float64)                           {}
