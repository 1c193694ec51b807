package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"trafficwatch/internal/modules/monitor/domain"
	"trafficwatch/internal/platform/clock"
)

// maxWait bounds a single timer so the loop rechecks the wall clock after
// suspends and clock steps.
const maxWait = 30 * time.Second

type Cycler interface {
	RunCycle(ctx context.Context, at time.Time) domain.CycleResult
}

type Scheduler struct {
	clock    clock.Clock
	boundary domain.Boundary
	cycler   Cycler
	logger   hclog.Logger
}

func NewScheduler(clock clock.Clock, boundary domain.Boundary, cycler Cycler, logger hclog.Logger) *Scheduler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Scheduler{clock: clock, boundary: boundary, cycler: cycler, logger: logger}
}

// Run fires one cycle per boundary until ctx is cancelled. A cycle in
// flight when ctx is cancelled runs to completion.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.boundary.Validate(); err != nil {
		return err
	}
	s.logger.Info("starting traffic monitor", "cadence", s.boundary.Cadence.String())
	next := s.boundary.Next(s.clock.Now())
	for {
		if err := s.waitUntil(ctx, next); err != nil {
			return err
		}
		s.runCycle(ctx, next)

		following := s.boundary.Next(s.clock.Now())
		if skipped := s.skipped(next, following); skipped > 0 {
			s.logger.Warn("cycle overran cadence, boundaries skipped", "skipped", skipped, "next", following.Format(time.RFC3339))
		}
		next = following
	}
}

func (s *Scheduler) waitUntil(ctx context.Context, deadline time.Time) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait := deadline.Sub(s.clock.Now())
		if wait <= 0 {
			return nil
		}
		if wait > maxWait {
			wait = maxWait
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(wait):
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context, at time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("unexpected error in cycle", "error", fmt.Sprint(r))
		}
	}()
	s.cycler.RunCycle(context.WithoutCancel(ctx), at)
}

func (s *Scheduler) skipped(prev, next time.Time) int {
	missed := int(next.Sub(prev)/s.boundary.Cadence) - 1
	if missed < 0 {
		return 0
	}
	return missed
}
