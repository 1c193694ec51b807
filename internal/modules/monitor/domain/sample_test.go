package domain_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"trafficwatch/internal/modules/monitor/domain"
)

func TestNewSampleRoundsAndDerivesDisplayFields(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("CST", 8*3600)
	at := time.Date(2026, 3, 9, 7, 5, 0, 123, loc)
	s := domain.NewSample(at, domain.HoursFromSeconds(1999))
	if s.Duration != 0.56 {
		t.Fatalf("expected 0.56 hours, got %v", s.Duration)
	}
	if s.Date != "2026-03-09" || s.Time != "07:05:00" {
		t.Fatalf("unexpected display fields: %q %q", s.Date, s.Time)
	}
	if s.Label() != "2026-03-09\n07:05:00" {
		t.Fatalf("unexpected label %q", s.Label())
	}
}

func TestHoursFromSecondsDoesNotRound(t *testing.T) {
	t.Parallel()
	if got := domain.HoursFromSeconds(1000); got != 1000.0/3600.0 {
		t.Fatalf("expected unrounded hours, got %v", got)
	}
}

func TestSampleJSONShape(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 9, 7, 5, 0, 500, time.UTC)
	raw, err := json.Marshal(domain.NewSample(at, 0.5))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"timestamp":"2026-03-09T07:05:00.0000005Z","date":"2026-03-09","time":"07:05:00","duration":0.5}`
	if string(raw) != want {
		t.Fatalf("unexpected json\nwant %s\ngot  %s", want, raw)
	}
	var back domain.Sample
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Timestamp.Equal(at) || back.Duration != 0.5 || back.Date != "2026-03-09" {
		t.Fatalf("unexpected decoded sample: %+v", back)
	}
}

func TestSampleUnmarshalNaiveTimestamp(t *testing.T) {
	t.Parallel()
	var s domain.Sample
	err := json.Unmarshal([]byte(`{"timestamp":"2025-01-02T08:00:00.123456","date":"2025-01-02","time":"08:00:00","duration":0.75}`), &s)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Timestamp.Hour() != 8 || s.Timestamp.Nanosecond() != 123456000 {
		t.Fatalf("unexpected timestamp %v", s.Timestamp)
	}
	if s.Duration != 0.75 {
		t.Fatalf("unexpected duration %v", s.Duration)
	}
}

func TestSampleKeepsStoredTimestampText(t *testing.T) {
	t.Parallel()
	in := `{"timestamp":"2025-01-02T08:00:00.123456","date":"2025-01-02","time":"08:00:00","duration":0.75}`
	var s domain.Sample
	if err := json.Unmarshal([]byte(in), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.StampText() != "2025-01-02T08:00:00.123456" {
		t.Fatalf("unexpected stamp %q", s.StampText())
	}
	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("stored sample rewritten\nwant %s\ngot  %s", in, out)
	}
}

func TestSampleUnmarshalRejectsBadTimestamp(t *testing.T) {
	t.Parallel()
	var s domain.Sample
	err := json.Unmarshal([]byte(`{"timestamp":"yesterday","duration":1}`), &s)
	if err == nil || !strings.Contains(err.Error(), "yesterday") {
		t.Fatalf("expected timestamp error, got %v", err)
	}
}

func TestSampleValidate(t *testing.T) {
	t.Parallel()
	if err := domain.NewSample(time.Now(), 1).Validate(); err != nil {
		t.Fatalf("valid sample rejected: %v", err)
	}
	if err := domain.NewSample(time.Now(), -1).Validate(); err == nil {
		t.Fatalf("negative duration accepted")
	}
	if err := (domain.Sample{Duration: 1}).Validate(); err == nil {
		t.Fatalf("zero timestamp accepted")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := []domain.Sample{
		domain.NewSample(base, 0.5),
		domain.NewSample(base.Add(time.Minute), 0.75),
		domain.NewSample(base.Add(2*time.Minute), 0.25),
	}
	stats := domain.Summarize(samples)
	if stats.Count != 3 || stats.Min != 0.25 || stats.Max != 0.75 || stats.Mean != 0.5 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if !stats.First.Equal(base) || !stats.Last.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("unexpected range: %+v", stats)
	}
	if got := domain.Summarize(nil); got.Count != 0 {
		t.Fatalf("expected empty stats, got %+v", got)
	}
}
