package domain

import "time"

type Stats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	First time.Time
	Last  time.Time
}

// Summarize returns the zero Stats for an empty history.
func Summarize(samples []Sample) Stats {
	if len(samples) == 0 {
		return Stats{}
	}
	stats := Stats{
		Count: len(samples),
		Min:   samples[0].Duration,
		Max:   samples[0].Duration,
		First: samples[0].Timestamp,
		Last:  samples[len(samples)-1].Timestamp,
	}
	var sum float64
	for _, s := range samples {
		sum += s.Duration
		if s.Duration < stats.Min {
			stats.Min = s.Duration
		}
		if s.Duration > stats.Max {
			stats.Max = s.Duration
		}
	}
	stats.Mean = RoundHours(sum / float64(len(samples)))
	return stats
}
