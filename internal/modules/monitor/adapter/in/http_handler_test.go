package in_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	monitorin "trafficwatch/internal/modules/monitor/adapter/in"
	"trafficwatch/internal/modules/monitor/dto"
)

func serve(t *testing.T, uc *fakeUsecase, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	monitorin.NewHTTPHandler(uc, nil).Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHistoryEndpointReturnsSamples(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	uc := &fakeUsecase{samples: []dto.SampleOutput{sample(at, 0.5), sample(at.Add(time.Minute), 0.75)}}
	rec := serve(t, uc, http.MethodGet, "/api/v1/traffic/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0]["timestamp"] != "2026-04-01T08:00:00Z" || got[1]["duration"] != 0.75 || got[0]["time"] != "08:00:00" {
		t.Fatalf("unexpected body %s", rec.Body)
	}
}

func TestHistoryEndpointReturnsStoredTimestampText(t *testing.T) {
	t.Parallel()
	stored := sample(time.Date(2026, 4, 1, 8, 0, 0, 0, time.Local), 0.5)
	stored.Stamp = "2026-04-01T08:00:00"
	rec := serve(t, &fakeUsecase{samples: []dto.SampleOutput{stored}}, http.MethodGet, "/api/v1/traffic/history")
	if !strings.Contains(rec.Body.String(), `"timestamp":"2026-04-01T08:00:00"`) {
		t.Fatalf("expected stored timestamp text, got %s", rec.Body)
	}
}

func TestHistoryEndpointEmptyList(t *testing.T) {
	t.Parallel()
	rec := serve(t, &fakeUsecase{samples: []dto.SampleOutput{}}, http.MethodGet, "/api/v1/traffic/history")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %d %s", rec.Code, rec.Body)
	}
}

func TestHistoryEndpointQueryParams(t *testing.T) {
	t.Parallel()
	uc := &fakeUsecase{}
	rec := serve(t, uc, http.MethodGet, "/api/v1/traffic/history?limit=5&since=2026-04-01T00:00:00Z")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if uc.lastHistory.Limit != 5 || !uc.lastHistory.Since.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected input %+v", uc.lastHistory)
	}
	for _, target := range []string{"/api/v1/traffic/history?limit=x", "/api/v1/traffic/history?limit=-1", "/api/v1/traffic/history?since=yesterday"} {
		if rec := serve(t, uc, http.MethodGet, target); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestHistoryEndpointReadFailure(t *testing.T) {
	t.Parallel()
	rec := serve(t, &fakeUsecase{historyErr: errors.New("permission denied")}, http.MethodGet, "/api/v1/traffic/history")
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), `"detail":"Error reading history data: permission denied"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body)
	}
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()
	uc := &fakeUsecase{stats: dto.StatsOutput{Count: 2, Min: 0.5, Max: 0.75, Mean: 0.63}}
	rec := serve(t, uc, http.MethodGet, "/api/v1/traffic/stats?until=2026-04-02T00:00:00Z")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got dto.StatsOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Count != 2 || got.Mean != 0.63 || uc.lastStats.Until.IsZero() {
		t.Fatalf("unexpected stats %+v input %+v", got, uc.lastStats)
	}
}

func TestHistoryEndpointRejectsPost(t *testing.T) {
	t.Parallel()
	if rec := serve(t, &fakeUsecase{}, http.MethodPost, "/api/v1/traffic/history"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
