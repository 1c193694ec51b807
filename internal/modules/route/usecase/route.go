package usecase

import (
	"context"

	"trafficwatch/internal/modules/route/domain"
	"trafficwatch/internal/modules/route/dto"
	routein "trafficwatch/internal/modules/route/port/in"
	"trafficwatch/internal/modules/route/service"
)

type Interactor struct {
	svc *service.RouteService
}

func NewInteractor(svc *service.RouteService) routein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Lookup(ctx context.Context, input dto.LookupInput) (dto.LookupOutput, error) {
	estimate, err := i.svc.Lookup(ctx, input.Origin, input.Destination, input.Strategy)
	if err != nil {
		return dto.LookupOutput{}, err
	}
	return dto.LookupOutput{
		Duration:  estimate.DurationHours,
		Distance:  estimate.DistanceKm,
		Timestamp: estimate.At.Format(domain.TimestampLayout),
	}, nil
}

func (i *Interactor) Geocode(ctx context.Context, input dto.GeocodeInput) (dto.GeocodeOutput, error) {
	place, err := i.svc.Geocode(ctx, input.Address)
	if err != nil {
		return dto.GeocodeOutput{}, err
	}
	return dto.GeocodeOutput{
		Location:         place.Location,
		FormattedAddress: place.FormattedAddress,
		District:         place.District,
		City:             place.City,
		Province:         place.Province,
	}, nil
}
