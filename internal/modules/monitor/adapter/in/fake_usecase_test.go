package in_test

import (
	"context"
	"time"

	"trafficwatch/internal/modules/monitor/dto"
)

type fakeUsecase struct {
	samples      []dto.SampleOutput
	historyErr   error
	stats        dto.StatsOutput
	statsErr     error
	lastHistory  dto.HistoryInput
	lastStats    dto.StatsInput
	runOnce      dto.CycleOutput
	runOnceErr   error
	reindexCount int
}

func (f *fakeUsecase) Initialize(context.Context) error { return nil }
func (f *fakeUsecase) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
func (f *fakeUsecase) RunOnce(context.Context) (dto.CycleOutput, error) {
	return f.runOnce, f.runOnceErr
}

func (f *fakeUsecase) History(_ context.Context, input dto.HistoryInput) ([]dto.SampleOutput, error) {
	f.lastHistory = input
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	out := f.samples
	if input.Limit > 0 && len(out) > input.Limit {
		out = out[len(out)-input.Limit:]
	}
	return out, nil
}

func (f *fakeUsecase) Stats(_ context.Context, input dto.StatsInput) (dto.StatsOutput, error) {
	f.lastStats = input
	return f.stats, f.statsErr
}

func (f *fakeUsecase) Reindex(context.Context) (dto.ReindexOutput, error) {
	return dto.ReindexOutput{Indexed: f.reindexCount}, nil
}

func (f *fakeUsecase) Render(context.Context) (dto.RenderOutput, error) {
	return dto.RenderOutput{}, nil
}

func sample(at time.Time, hours float64) dto.SampleOutput {
	return dto.SampleOutput{Timestamp: at, Date: at.Format("2006-01-02"), Time: at.Format("15:04:05"), Duration: hours}
}
