package out

import (
	"context"

	"trafficwatch/internal/modules/route/domain"
)

type Provider interface {
	Driving(ctx context.Context, query domain.Query) (domain.Path, error)
	Geocode(ctx context.Context, address string) (domain.Place, error)
}
