package httpjson_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trafficwatch/internal/platform/httpjson"
)

func TestWriteError(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	httpjson.WriteError(rec, http.StatusBadRequest, "Address not found")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"detail":"Address not found"}` {
		t.Fatalf("unexpected body %s", got)
	}
	if rec.Header().Get("content-type") != "application/json" {
		t.Fatalf("missing content type")
	}
}

func TestDecodeEmptyBody(t *testing.T) {
	t.Parallel()
	v := struct{ Name string }{Name: "kept"}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if err := httpjson.Decode(req, &v); err != nil || v.Name != "kept" {
		t.Fatalf("expected untouched value, got %+v err=%v", v, err)
	}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name":"x"}`))
	if err := httpjson.Decode(req, &v); err != nil || v.Name != "x" {
		t.Fatalf("expected decoded value, got %+v err=%v", v, err)
	}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	if err := httpjson.Decode(req, &v); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	called := false
	h := httpjson.CORS(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/geocode", nil)
	req.Header.Set("Origin", "http://dash.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || called {
		t.Fatalf("expected preflight short-circuit, got %d called=%v", rec.Code, called)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://dash.local" || rec.Header().Get("Access-Control-Allow-Headers") != "content-type" {
		t.Fatalf("unexpected cors headers %v", rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://dash.local")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !called || rec.Header().Get("Access-Control-Allow-Origin") != "http://dash.local" {
		t.Fatalf("expected pass-through with cors headers")
	}
}
