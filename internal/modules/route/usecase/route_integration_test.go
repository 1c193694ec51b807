package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	routeout "trafficwatch/internal/modules/route/adapter/out"
	"trafficwatch/internal/modules/route/domain"
	"trafficwatch/internal/modules/route/dto"
	"trafficwatch/internal/modules/route/service"
	"trafficwatch/internal/modules/route/usecase"
	"trafficwatch/internal/platform/amap"
	"trafficwatch/internal/platform/clock"
	apperrors "trafficwatch/internal/platform/errors"
)

func newUsecase(t *testing.T, handler http.HandlerFunc) func() (context.Context, *usecase.Interactor) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := amap.New(srv.URL, "key", time.Second)
	svc := service.NewRouteService(clock.SystemClock{}, routeout.NewAmapProvider(client), domain.Query{Origin: "o", Destination: "d", Strategy: 10}, nil)
	uc, ok := usecase.NewInteractor(svc).(*usecase.Interactor)
	if !ok {
		t.Fatalf("unexpected usecase type")
	}
	return func() (context.Context, *usecase.Interactor) { return context.Background(), uc }
}

func TestLookupAgainstProvider(t *testing.T) {
	t.Parallel()
	get := newUsecase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("strategy") != "2" || r.URL.Query().Get("origin") != "o" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"status":"1","route":{"paths":[{"duration":"1800","distance":"5000"}]}}`))
	})
	ctx, uc := get()
	strategy := 2
	out, err := uc.Lookup(ctx, dto.LookupInput{Strategy: &strategy})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if out.Duration != 0.5 || out.Distance != 5 {
		t.Fatalf("unexpected output %+v", out)
	}
	if _, err := time.ParseInLocation(domain.TimestampLayout, out.Timestamp, time.Local); err != nil {
		t.Fatalf("unexpected timestamp %q: %v", out.Timestamp, err)
	}
}

func TestGeocodeAgainstProvider(t *testing.T) {
	t.Parallel()
	get := newUsecase(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"1","geocodes":[{"location":"116.39,39.9","formatted_address":"Beijing","district":[],"city":"Beijing","province":"Beijing"}]}`))
	})
	ctx, uc := get()
	out, err := uc.Geocode(ctx, dto.GeocodeInput{Address: "Beijing"})
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	want := dto.GeocodeOutput{Location: "116.39,39.9", FormattedAddress: "Beijing", City: "Beijing", Province: "Beijing"}
	if out != want {
		t.Fatalf("expected %+v, got %+v", want, out)
	}
}

func TestLookupProviderFailure(t *testing.T) {
	t.Parallel()
	get := newUsecase(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"0","info":"INVALID_USER_KEY"}`))
	})
	ctx, uc := get()
	if _, err := uc.Lookup(ctx, dto.LookupInput{}); !errors.Is(err, apperrors.ErrProviderStatus) {
		t.Fatalf("expected provider status error, got %v", err)
	}
}
