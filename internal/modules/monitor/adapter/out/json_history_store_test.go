package out_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	monitorout "trafficwatch/internal/modules/monitor/adapter/out"
	"trafficwatch/internal/modules/monitor/domain"
)

var base = time.Date(2026, 4, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600))

func TestJSONHistoryStoreInitializeIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "data", "hourly_durations.json")
	store := monitorout.NewJSONHistoryStore(path, nil)
	ctx := context.Background()

	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil || string(raw) != "[]" {
		t.Fatalf("expected empty array file, got %q err=%v", raw, err)
	}
	if err := store.Append(ctx, domain.NewSample(base, 0.5)); err != nil {
		t.Fatalf("append: %v", err)
	}
	before, _ := os.ReadFile(path)
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatalf("initialize changed existing history")
	}
}

func TestJSONHistoryStoreRoundTripPreservesOrder(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.json")
	store := monitorout.NewJSONHistoryStore(path, nil)
	ctx := context.Background()
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	var want []domain.Sample
	for i := 0; i < 5; i++ {
		s := domain.NewSample(base.Add(time.Duration(i)*time.Minute+123*time.Microsecond), 0.5+float64(i)*0.11)
		want = append(want, s)
		if err := store.Append(ctx, s); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Timestamp.Equal(want[i].Timestamp) || got[i].Duration != want[i].Duration || got[i].Date != want[i].Date || got[i].Time != want[i].Time {
			t.Fatalf("sample %d mismatch: want %+v got %+v", i, want[i], got[i])
		}
	}
}

func TestJSONHistoryStoreFileFormat(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.json")
	store := monitorout.NewJSONHistoryStore(path, nil)
	if err := store.Append(context.Background(), domain.NewSample(base, 0.75)); err != nil {
		t.Fatalf("append: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "\n        \"duration\": 0.75") {
		t.Fatalf("expected four-space indented records, got %s", raw)
	}
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("history is not a json array: %v", err)
	}
	rec := records[0]
	if rec["timestamp"] != "2026-04-01T08:00:00+08:00" || rec["date"] != "2026-04-01" || rec["time"] != "08:00:00" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestJSONHistoryStoreLoadAllNeverFails(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	missing := monitorout.NewJSONHistoryStore(filepath.Join(dir, "missing.json"), nil)
	if got := missing.LoadAll(context.Background()); got == nil || len(got) != 0 {
		t.Fatalf("expected empty history for missing file, got %v", got)
	}

	corruptPath := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corruptPath, []byte(`[{"timestamp":`), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	corrupt := monitorout.NewJSONHistoryStore(corruptPath, nil)
	if got := corrupt.LoadAll(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty history for corrupt file, got %v", got)
	}
	if _, err := corrupt.Load(context.Background()); err == nil {
		t.Fatalf("expected strict load to fail on corrupt file")
	}
}

func TestJSONHistoryStoreAppendLeavesCorruptFileAlone(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := monitorout.NewJSONHistoryStore(path, nil)
	if err := store.Append(context.Background(), domain.NewSample(base, 1)); err == nil {
		t.Fatalf("expected append to fail on unreadable history")
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "not json" {
		t.Fatalf("corrupt history was overwritten: %q", raw)
	}
}

func TestJSONHistoryStoreReadsNaiveTimestamps(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.json")
	legacy := `[
    {
        "timestamp": "2025-01-02T08:00:00.123456",
        "date": "2025-01-02",
        "time": "08:00:00",
        "duration": 0.42
    }
]`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := monitorout.NewJSONHistoryStore(path, nil)
	if err := store.Append(context.Background(), domain.NewSample(base, 0.5)); err != nil {
		t.Fatalf("append: %v", err)
	}
	samples, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(samples) != 2 || samples[0].Duration != 0.42 || samples[0].Time != "08:00:00" {
		t.Fatalf("unexpected samples %+v", samples)
	}
}

func TestJSONHistoryStoreSerialisesConcurrentWriters(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.json")
	first := monitorout.NewJSONHistoryStore(path, nil)
	second := monitorout.NewJSONHistoryStore(path, nil)
	ctx := context.Background()

	done := make(chan error, 20)
	for i := 0; i < 10; i++ {
		go func(i int) { done <- first.Append(ctx, domain.NewSample(base.Add(time.Duration(i)*time.Second), 1)) }(i)
		go func(i int) { done <- second.Append(ctx, domain.NewSample(base.Add(time.Duration(i)*time.Second+time.Millisecond), 2)) }(i)
	}
	for i := 0; i < 20; i++ {
		if err := <-done; err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	samples, err := first.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(samples) != 20 {
		t.Fatalf("expected 20 samples, got %d", len(samples))
	}
}
