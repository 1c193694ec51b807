package in

import (
	"context"

	"trafficwatch/internal/modules/route/dto"
	routein "trafficwatch/internal/modules/route/port/in"
)

type CLIHandler struct {
	usecase routein.Usecase
}

func NewCLIHandler(usecase routein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Lookup(ctx context.Context, origin, destination string, strategy *int) (dto.LookupOutput, error) {
	return h.usecase.Lookup(ctx, dto.LookupInput{Origin: origin, Destination: destination, Strategy: strategy})
}

func (h CLIHandler) Geocode(ctx context.Context, address string) (dto.GeocodeOutput, error) {
	return h.usecase.Geocode(ctx, dto.GeocodeInput{Address: address})
}
