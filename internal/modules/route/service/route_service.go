package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"trafficwatch/internal/modules/route/domain"
	routeout "trafficwatch/internal/modules/route/port/out"
	"trafficwatch/internal/platform/clock"
	apperrors "trafficwatch/internal/platform/errors"
)

type RouteService struct {
	clock    clock.Clock
	provider routeout.Provider
	defaults domain.Query
	logger   hclog.Logger
}

func NewRouteService(clock clock.Clock, provider routeout.Provider, defaults domain.Query, logger hclog.Logger) *RouteService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &RouteService{clock: clock, provider: provider, defaults: defaults, logger: logger}
}

// Lookup fills blank fields from the configured route and asks the
// provider once. Nothing is persisted.
func (s *RouteService) Lookup(ctx context.Context, origin, destination string, strategy *int) (domain.Estimate, error) {
	query := s.defaults
	if v := strings.TrimSpace(origin); v != "" {
		query.Origin = v
	}
	if v := strings.TrimSpace(destination); v != "" {
		query.Destination = v
	}
	if strategy != nil {
		query.Strategy = *strategy
	}
	if err := query.Validate(); err != nil {
		return domain.Estimate{}, err
	}
	s.logger.Debug("requesting driving route", "origin", query.Origin, "destination", query.Destination, "strategy", query.Strategy)
	path, err := s.provider.Driving(ctx, query)
	if err != nil {
		return domain.Estimate{}, err
	}
	return domain.NewEstimate(path, s.clock.Now()), nil
}

func (s *RouteService) Geocode(ctx context.Context, address string) (domain.Place, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Place{}, fmt.Errorf("%w: address is required", apperrors.ErrInvalidInput)
	}
	return s.provider.Geocode(ctx, address)
}
