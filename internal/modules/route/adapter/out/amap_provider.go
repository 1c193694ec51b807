package out

import (
	"context"

	"trafficwatch/internal/modules/route/domain"
	routeout "trafficwatch/internal/modules/route/port/out"
	"trafficwatch/internal/platform/amap"
)

type AmapProvider struct {
	client *amap.Client
}

func NewAmapProvider(client *amap.Client) routeout.Provider {
	return &AmapProvider{client: client}
}

func (p *AmapProvider) Driving(ctx context.Context, query domain.Query) (domain.Path, error) {
	path, err := p.client.Driving(ctx, amap.DrivingQuery{
		Origin:      query.Origin,
		Destination: query.Destination,
		Strategy:    query.Strategy,
	})
	if err != nil {
		return domain.Path{}, err
	}
	return domain.Path{DurationSeconds: path.DurationSeconds, DistanceMeters: path.DistanceMeters}, nil
}

func (p *AmapProvider) Geocode(ctx context.Context, address string) (domain.Place, error) {
	g, err := p.client.Geocode(ctx, address)
	if err != nil {
		return domain.Place{}, err
	}
	return domain.Place{
		Location:         g.Location,
		FormattedAddress: g.FormattedAddress,
		District:         g.District,
		City:             g.City,
		Province:         g.Province,
	}, nil
}
