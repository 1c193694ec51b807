package in

import (
	"context"

	"trafficwatch/internal/modules/route/dto"
)

type Usecase interface {
	Lookup(ctx context.Context, input dto.LookupInput) (dto.LookupOutput, error)
	Geocode(ctx context.Context, input dto.GeocodeInput) (dto.GeocodeOutput, error)
}
