package usecase

import (
	"context"
	"errors"

	"trafficwatch/internal/modules/monitor/domain"
	"trafficwatch/internal/modules/monitor/dto"
	monitorin "trafficwatch/internal/modules/monitor/port/in"
	"trafficwatch/internal/modules/monitor/service"
	"trafficwatch/internal/platform/clock"
	apperrors "trafficwatch/internal/platform/errors"
)

type Interactor struct {
	svc       *service.MonitorService
	scheduler *service.Scheduler
	clock     clock.Clock
}

func NewInteractor(svc *service.MonitorService, scheduler *service.Scheduler, clock clock.Clock) monitorin.Usecase {
	return &Interactor{svc: svc, scheduler: scheduler, clock: clock}
}

func (i *Interactor) Initialize(ctx context.Context) error {
	return i.svc.Initialize(ctx)
}

func (i *Interactor) Run(ctx context.Context) error {
	if err := i.svc.Initialize(ctx); err != nil {
		return err
	}
	return i.scheduler.Run(ctx)
}

// RunOnce runs a single cycle now. A cycle without a new sample reports
// apperrors.ErrNoValue alongside the cycle output.
func (i *Interactor) RunOnce(ctx context.Context) (dto.CycleOutput, error) {
	if err := i.svc.Initialize(ctx); err != nil {
		return dto.CycleOutput{}, err
	}
	result := i.svc.RunCycle(ctx, i.clock.Now())
	out := toCycleOutput(result)
	switch result.Outcome {
	case domain.OutcomeNoValue:
		return out, apperrors.ErrNoValue
	case domain.OutcomePersistFail:
		return out, errors.New("sample fetched but not persisted")
	}
	return out, nil
}

func (i *Interactor) History(ctx context.Context, input dto.HistoryInput) ([]dto.SampleOutput, error) {
	samples, err := i.svc.Samples(ctx, input.Since, input.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SampleOutput, 0, len(samples))
	for _, s := range samples {
		out = append(out, toSampleOutput(s))
	}
	return out, nil
}

func (i *Interactor) Stats(ctx context.Context, input dto.StatsInput) (dto.StatsOutput, error) {
	stats, err := i.svc.Stats(ctx, input.Since, input.Until)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	return dto.StatsOutput{
		Count: stats.Count,
		Min:   stats.Min,
		Max:   stats.Max,
		Mean:  stats.Mean,
		First: stats.First,
		Last:  stats.Last,
	}, nil
}

func (i *Interactor) Reindex(ctx context.Context) (dto.ReindexOutput, error) {
	n, err := i.svc.Reindex(ctx)
	if err != nil {
		return dto.ReindexOutput{}, err
	}
	return dto.ReindexOutput{Indexed: n}, nil
}

func (i *Interactor) Render(ctx context.Context) (dto.RenderOutput, error) {
	artifacts, n, err := i.svc.Render(ctx)
	if err != nil {
		return dto.RenderOutput{}, err
	}
	return dto.RenderOutput{Snapshot: artifacts.Snapshot, Latest: artifacts.Latest, Samples: n}, nil
}

func toSampleOutput(s domain.Sample) dto.SampleOutput {
	return dto.SampleOutput{Timestamp: s.Timestamp, Stamp: s.Stamp, Date: s.Date, Time: s.Time, Duration: s.Duration}
}

func toCycleOutput(result domain.CycleResult) dto.CycleOutput {
	out := dto.CycleOutput{
		At:       result.At,
		Outcome:  string(result.Outcome),
		Samples:  result.Samples,
		Snapshot: result.Artifacts.Snapshot,
		Latest:   result.Artifacts.Latest,
	}
	if result.Sample != nil {
		sample := toSampleOutput(*result.Sample)
		out.Sample = &sample
	}
	return out
}
