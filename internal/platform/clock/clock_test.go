package clock_test

import (
	"testing"
	"time"

	"trafficwatch/internal/platform/clock"
)

func TestSystemClockUsesConfiguredLocation(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+8", 8*3600)
	now := clock.SystemClock{Location: loc}.Now()
	if now.Location() != loc {
		t.Fatalf("expected location %v, got %v", loc, now.Location())
	}
}

func TestSystemClockAfterFires(t *testing.T) {
	t.Parallel()
	select {
	case <-clock.SystemClock{}.After(time.Millisecond):
	case <-time.After(2 * time.Second):
		t.Fatalf("after channel did not fire")
	}
}
