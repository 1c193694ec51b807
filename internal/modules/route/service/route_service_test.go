package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trafficwatch/internal/modules/route/domain"
	"trafficwatch/internal/modules/route/service"
	apperrors "trafficwatch/internal/platform/errors"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time                       { return c.now }
func (c fixedClock) After(time.Duration) <-chan time.Time { return nil }

type fakeProvider struct {
	query   domain.Query
	path    domain.Path
	err     error
	address string
	place   domain.Place
}

func (f *fakeProvider) Driving(_ context.Context, q domain.Query) (domain.Path, error) {
	f.query = q
	return f.path, f.err
}

func (f *fakeProvider) Geocode(_ context.Context, address string) (domain.Place, error) {
	f.address = address
	return f.place, f.err
}

var defaults = domain.Query{Origin: "116.1,39.9", Destination: "116.5,40.0", Strategy: 10}

func TestLookupUsesDefaults(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{path: domain.Path{DurationSeconds: 1800, DistanceMeters: 5000}}
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc := service.NewRouteService(fixedClock{now: at}, provider, defaults, nil)

	estimate, err := svc.Lookup(context.Background(), "", " ", nil)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if provider.query != defaults {
		t.Fatalf("expected defaults, got %+v", provider.query)
	}
	if estimate.DurationHours != 0.5 || estimate.DistanceKm != 5 || !estimate.At.Equal(at) {
		t.Fatalf("unexpected estimate %+v", estimate)
	}
}

func TestLookupOverrides(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{}
	svc := service.NewRouteService(fixedClock{}, provider, defaults, nil)
	zero := 0
	if _, err := svc.Lookup(context.Background(), "1,1", "2,2", &zero); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	want := domain.Query{Origin: "1,1", Destination: "2,2", Strategy: 0}
	if provider.query != want {
		t.Fatalf("expected %+v, got %+v", want, provider.query)
	}
}

func TestLookupWithoutRoute(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{}
	svc := service.NewRouteService(fixedClock{}, provider, domain.Query{Strategy: 10}, nil)
	if _, err := svc.Lookup(context.Background(), "", "", nil); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if provider.query != (domain.Query{}) {
		t.Fatalf("provider must not be called")
	}
}

func TestGeocodeTrimsAndValidates(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{place: domain.Place{Location: "1,2"}}
	svc := service.NewRouteService(fixedClock{}, provider, defaults, nil)
	if _, err := svc.Geocode(context.Background(), "   "); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	place, err := svc.Geocode(context.Background(), " Tiananmen ")
	if err != nil || place.Location != "1,2" || provider.address != "Tiananmen" {
		t.Fatalf("unexpected geocode %+v err=%v address=%q", place, err, provider.address)
	}
}
