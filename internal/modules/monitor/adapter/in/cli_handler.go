package in

import (
	"context"
	"time"

	"trafficwatch/internal/modules/monitor/dto"
	monitorin "trafficwatch/internal/modules/monitor/port/in"
)

type CLIHandler struct {
	usecase monitorin.Usecase
}

func NewCLIHandler(usecase monitorin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Run(ctx context.Context) error {
	return h.usecase.Run(ctx)
}

func (h CLIHandler) RunOnce(ctx context.Context) (dto.CycleOutput, error) {
	return h.usecase.RunOnce(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int, since time.Time) ([]dto.SampleOutput, error) {
	return h.usecase.History(ctx, dto.HistoryInput{Limit: limit, Since: since})
}

func (h CLIHandler) Stats(ctx context.Context, since, until time.Time) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx, dto.StatsInput{Since: since, Until: until})
}

func (h CLIHandler) Reindex(ctx context.Context) (dto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx)
}

func (h CLIHandler) Render(ctx context.Context) (dto.RenderOutput, error) {
	return h.usecase.Render(ctx)
}
