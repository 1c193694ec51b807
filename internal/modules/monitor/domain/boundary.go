package domain

import (
	"fmt"
	"time"
)

// Boundary describes the wall-clock instants a cycle fires on: every
// Cadence counted from local midnight in Location.
type Boundary struct {
	Cadence  time.Duration
	Location *time.Location
}

func (b Boundary) Validate() error {
	if b.Cadence <= 0 {
		return fmt.Errorf("cadence must be positive")
	}
	if (24*time.Hour)%b.Cadence != 0 {
		return fmt.Errorf("cadence %s must divide 24h", b.Cadence)
	}
	return nil
}

// Next returns the first boundary strictly after t. Days shortened or
// lengthened by DST transitions realign at the following midnight.
func (b Boundary) Next(t time.Time) time.Time {
	loc := b.Location
	if loc == nil {
		loc = t.Location()
	}
	t = t.In(loc)
	y, m, d := t.Date()
	sinceMidnight := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
	next := (sinceMidnight/b.Cadence + 1) * b.Cadence
	candidate := time.Date(y, m, d, 0, 0, 0, int(next), loc)
	if !candidate.After(t) {
		candidate = candidate.Add(b.Cadence)
	}
	return candidate
}
