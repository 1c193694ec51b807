package out

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"trafficwatch/internal/modules/monitor/domain"
	monitorout "trafficwatch/internal/modules/monitor/port/out"
	"trafficwatch/internal/platform/amap"
	apperrors "trafficwatch/internal/platform/errors"
)

type DrivingClient interface {
	Driving(ctx context.Context, q amap.DrivingQuery) (amap.Path, error)
}

// AmapFetcher issues exactly one provider request per Fetch. The next
// boundary is the retry.
type AmapFetcher struct {
	client DrivingClient
	query  amap.DrivingQuery
	logger hclog.Logger
}

func NewAmapFetcher(client DrivingClient, query amap.DrivingQuery, logger hclog.Logger) monitorout.Fetcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &AmapFetcher{client: client, query: query, logger: logger}
}

func (f *AmapFetcher) Fetch(ctx context.Context) (float64, error) {
	path, err := f.client.Driving(ctx, f.query)
	if err != nil {
		var respErr *amap.ResponseError
		if errors.As(err, &respErr) {
			f.logger.Error("unexpected api response", "status_code", respErr.StatusCode, "body", respErr.Body)
		} else {
			f.logger.Error("request error", "error", err)
		}
		return 0, fmt.Errorf("%w: %w", apperrors.ErrNoValue, err)
	}
	return domain.HoursFromSeconds(path.DurationSeconds), nil
}
