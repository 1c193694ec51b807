package in

import (
	"context"

	"trafficwatch/internal/modules/monitor/dto"
)

type Usecase interface {
	Initialize(ctx context.Context) error
	// Run blocks until ctx is cancelled and returns ctx.Err().
	Run(ctx context.Context) error
	RunOnce(ctx context.Context) (dto.CycleOutput, error)
	History(ctx context.Context, input dto.HistoryInput) ([]dto.SampleOutput, error)
	Stats(ctx context.Context, input dto.StatsInput) (dto.StatsOutput, error)
	Reindex(ctx context.Context) (dto.ReindexOutput, error)
	Render(ctx context.Context) (dto.RenderOutput, error)
}
