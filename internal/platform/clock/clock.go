package clock

import "time"

// Clock abstracts time to keep the scheduler and usecases deterministic in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock reads the wall clock in Location, or in the process local zone
// when Location is nil.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
