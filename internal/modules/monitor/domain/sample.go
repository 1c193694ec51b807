package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	// naiveLayout matches ISO-8601 timestamps written without an offset.
	naiveLayout = "2006-01-02T15:04:05.999999999"
)

// Sample is one recorded travel-time measurement. Date and Time are display
// projections of Timestamp kept so readers never need to reparse it.
type Sample struct {
	Timestamp time.Time
	// Stamp is the timestamp text as it was read from storage. Empty for
	// samples created in this process.
	Stamp    string
	Date     string
	Time     string
	Duration float64
}

// NewSample rounds hours to two decimals and derives the display fields
// from at in its own location.
func NewSample(at time.Time, hours float64) Sample {
	return Sample{
		Timestamp: at,
		Date:      at.Format(DateLayout),
		Time:      at.Format(TimeLayout),
		Duration:  RoundHours(hours),
	}
}

func RoundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}

// HoursFromSeconds converts without rounding.
func HoursFromSeconds(seconds float64) float64 {
	return seconds / 3600
}

// StampText is the stored timestamp text, or Timestamp in RFC3339 with
// nanoseconds when the sample was never read back.
func (s Sample) StampText() string {
	if s.Stamp != "" {
		return s.Stamp
	}
	return s.Timestamp.Format(time.RFC3339Nano)
}

func (s Sample) Label() string {
	return s.Date + "\n" + s.Time
}

func (s Sample) Validate() error {
	if s.Timestamp.IsZero() {
		return fmt.Errorf("sample timestamp is required")
	}
	if s.Duration < 0 || math.IsNaN(s.Duration) || math.IsInf(s.Duration, 0) {
		return fmt.Errorf("sample duration must be a non-negative number, got %v", s.Duration)
	}
	return nil
}

type record struct {
	Timestamp string  `json:"timestamp"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Duration  float64 `json:"duration"`
}

func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal(record{
		Timestamp: s.StampText(),
		Date:      s.Date,
		Time:      s.Time,
		Duration:  s.Duration,
	})
}

func (s *Sample) UnmarshalJSON(b []byte) error {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	ts, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return err
	}
	*s = Sample{Timestamp: ts, Stamp: r.Timestamp, Date: r.Date, Time: r.Time, Duration: r.Duration}
	if s.Date == "" {
		s.Date = ts.Format(DateLayout)
	}
	if s.Time == "" {
		s.Time = ts.Format(TimeLayout)
	}
	return nil
}

// ParseTimestamp accepts RFC3339 with any fractional precision and naive
// ISO-8601, which is read in the local zone.
func ParseTimestamp(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(naiveLayout, v, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return ts, nil
}
