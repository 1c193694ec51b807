package dto

import (
	"encoding/json"
	"time"

	"trafficwatch/internal/modules/monitor/domain"
)

// SampleOutput encodes its timestamp as the text found in the history file
// so stored values are served back unchanged.
type SampleOutput struct {
	Timestamp time.Time `json:"-"`
	Stamp     string    `json:"-"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Duration  float64   `json:"duration"`
}

type sampleWire struct {
	Timestamp string  `json:"timestamp"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Duration  float64 `json:"duration"`
}

func (s SampleOutput) MarshalJSON() ([]byte, error) {
	stamp := s.Stamp
	if stamp == "" {
		stamp = s.Timestamp.Format(time.RFC3339Nano)
	}
	return json.Marshal(sampleWire{Timestamp: stamp, Date: s.Date, Time: s.Time, Duration: s.Duration})
}

func (s *SampleOutput) UnmarshalJSON(b []byte) error {
	var w sampleWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	ts, err := domain.ParseTimestamp(w.Timestamp)
	if err != nil {
		return err
	}
	*s = SampleOutput{Timestamp: ts, Stamp: w.Timestamp, Date: w.Date, Time: w.Time, Duration: w.Duration}
	return nil
}
