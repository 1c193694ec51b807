package dto

import "time"

type HistoryInput struct {
	// Limit keeps only the most recent samples when positive.
	Limit int
	Since time.Time
}

type StatsInput struct {
	Since time.Time
	Until time.Time
}

type StatsOutput struct {
	Count int       `json:"count"`
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Mean  float64   `json:"mean"`
	First time.Time `json:"first,omitempty"`
	Last  time.Time `json:"last,omitempty"`
}

type RenderOutput struct {
	Snapshot string `json:"snapshot"`
	Latest   string `json:"latest"`
	Samples  int    `json:"samples"`
}

type CycleOutput struct {
	At       time.Time     `json:"at"`
	Outcome  string        `json:"outcome"`
	Sample   *SampleOutput `json:"sample,omitempty"`
	Samples  int           `json:"samples"`
	Snapshot string        `json:"snapshot,omitempty"`
	Latest   string        `json:"latest,omitempty"`
}

type ReindexOutput struct {
	Indexed int `json:"indexed"`
}
