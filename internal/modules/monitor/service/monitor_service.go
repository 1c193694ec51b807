package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"

	"trafficwatch/internal/modules/monitor/domain"
	monitorout "trafficwatch/internal/modules/monitor/port/out"
	"trafficwatch/internal/platform/clock"
	apperrors "trafficwatch/internal/platform/errors"
)

const (
	ReasonStatus    = "status"
	ReasonMalformed = "malformed"
	ReasonTimeout   = "timeout"
	ReasonTransport = "transport"
)

type MonitorService struct {
	clock      clock.Clock
	fetcher    monitorout.Fetcher
	store      monitorout.HistoryStore
	index      monitorout.HistoryIndex
	visualizer monitorout.Visualizer
	recorder   monitorout.Recorder
	logger     hclog.Logger

	// indexSynced is set once the index is known to hold the stored history
	// and cleared whenever an upsert fails.
	indexSynced atomic.Bool
}

// NewMonitorService accepts a nil index and a nil recorder.
func NewMonitorService(
	clock clock.Clock,
	fetcher monitorout.Fetcher,
	store monitorout.HistoryStore,
	index monitorout.HistoryIndex,
	visualizer monitorout.Visualizer,
	recorder monitorout.Recorder,
	logger hclog.Logger,
) *MonitorService {
	if recorder == nil {
		recorder = monitorout.NopRecorder{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &MonitorService{
		clock:      clock,
		fetcher:    fetcher,
		store:      store,
		index:      index,
		visualizer: visualizer,
		recorder:   recorder,
		logger:     logger,
	}
}

func (s *MonitorService) Initialize(ctx context.Context) error {
	if err := s.store.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize history: %w", err)
	}
	s.syncIndex(ctx)
	return nil
}

// RunCycle performs fetch, persist and render for one boundary. Failures
// are logged and reflected in the result; nothing is returned as an error.
func (s *MonitorService) RunCycle(ctx context.Context, at time.Time) domain.CycleResult {
	started := s.clock.Now()
	result := domain.CycleResult{At: at}
	defer func() {
		s.recorder.CycleFinished(result.Outcome, s.clock.Now().Sub(started))
	}()

	s.logger.Info("fetching duration", "at", at.Format("2006-01-02 15:04:05"))
	hours, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.recorder.FetchFailed(FailureReason(err))
		s.logger.Warn("no duration this cycle", "error", err)
		result.Outcome = domain.OutcomeNoValue
		return result
	}

	sample := domain.NewSample(s.clock.Now(), hours)
	result.Sample = &sample
	if err := s.record(ctx, sample); err != nil {
		s.logger.Error("error recording duration", "error", err)
		result.Outcome = domain.OutcomePersistFail
	} else {
		s.recorder.SampleRecorded(sample.Duration)
		s.logger.Info("recorded duration", "hours", fmt.Sprintf("%.2f", sample.Duration))
		result.Outcome = domain.OutcomeRecorded
	}

	samples := s.store.LoadAll(ctx)
	result.Samples = len(samples)
	artifacts, err := s.visualizer.Render(ctx, samples, at)
	if err != nil {
		s.logger.Error("error creating visualization", "error", err)
		return result
	}
	result.Artifacts = artifacts
	return result
}

func (s *MonitorService) record(ctx context.Context, sample domain.Sample) error {
	if err := sample.Validate(); err != nil {
		return err
	}
	if err := s.store.Append(ctx, sample); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.Upsert(ctx, sample); err != nil {
			s.indexSynced.Store(false)
			s.logger.Warn("history index out of date", "error", err)
		}
	}
	return nil
}

// Samples returns stored samples captured at or after since, keeping the
// most recent limit when limit is positive.
func (s *MonitorService) Samples(ctx context.Context, since time.Time, limit int) ([]domain.Sample, error) {
	if s.syncIndex(ctx) {
		samples, err := s.index.Range(ctx, since, time.Time{}, limit)
		if err == nil {
			return samples, nil
		}
		s.indexSynced.Store(false)
		s.logger.Warn("history index unavailable, scanning history", "error", err)
	}
	samples, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	samples = FilterRange(samples, since, time.Time{})
	if limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	return samples, nil
}

// Render draws the stored history without fetching.
func (s *MonitorService) Render(ctx context.Context) (domain.Artifacts, int, error) {
	samples, err := s.store.Load(ctx)
	if err != nil {
		return domain.Artifacts{}, 0, err
	}
	if len(samples) == 0 {
		return domain.Artifacts{}, 0, apperrors.ErrEmptyHistory
	}
	artifacts, err := s.visualizer.Render(ctx, samples, s.clock.Now())
	if err != nil {
		return domain.Artifacts{}, len(samples), fmt.Errorf("render history: %w", err)
	}
	return artifacts, len(samples), nil
}

func (s *MonitorService) Stats(ctx context.Context, from, to time.Time) (domain.Stats, error) {
	if s.syncIndex(ctx) {
		stats, err := s.index.Stats(ctx, from, to)
		if err == nil {
			return stats, nil
		}
		s.indexSynced.Store(false)
		s.logger.Warn("history index unavailable, scanning history", "error", err)
	}
	samples, err := s.store.Load(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.Summarize(FilterRange(samples, from, to)), nil
}

// Reindex rebuilds the index from the history file and returns the number
// of samples projected.
func (s *MonitorService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, fmt.Errorf("%w: history index is not configured", apperrors.ErrInvalidConfig)
	}
	samples, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.rebuildIndex(ctx, samples); err != nil {
		return 0, err
	}
	return len(samples), nil
}

// syncIndex reports whether the index may answer queries, rebuilding it
// first when its row count differs from the stored history. Histories
// written by other tools never pass through Upsert.
func (s *MonitorService) syncIndex(ctx context.Context) bool {
	if s.index == nil {
		return false
	}
	if s.indexSynced.Load() {
		return true
	}
	samples, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("cannot check history index", "error", err)
		return false
	}
	if n, err := s.index.Count(ctx); err == nil && n == len(samples) {
		s.indexSynced.Store(true)
		return true
	}
	s.logger.Info("rebuilding history index", "samples", len(samples))
	if err := s.rebuildIndex(ctx, samples); err != nil {
		s.logger.Warn("history index rebuild failed", "error", err)
		return false
	}
	return true
}

func (s *MonitorService) rebuildIndex(ctx context.Context, samples []domain.Sample) error {
	s.indexSynced.Store(false)
	if err := s.index.Reset(ctx); err != nil {
		return err
	}
	for _, sample := range samples {
		if err := s.index.Upsert(ctx, sample); err != nil {
			return err
		}
	}
	s.indexSynced.Store(true)
	return nil
}

// FilterRange keeps samples in [from, to]; zero bounds are open.
func FilterRange(samples []domain.Sample, from, to time.Time) []domain.Sample {
	if from.IsZero() && to.IsZero() {
		return samples
	}
	out := make([]domain.Sample, 0, len(samples))
	for _, s := range samples {
		if !from.IsZero() && s.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && s.Timestamp.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func FailureReason(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, apperrors.ErrProviderStatus):
		return ReasonStatus
	case errors.Is(err, apperrors.ErrMalformedResponse):
		return ReasonMalformed
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ReasonTimeout
	default:
		return ReasonTransport
	}
}
