package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RunFunc is invoked on every aligned interval.
type RunFunc func(ctx context.Context, at time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval     time.Duration
	AlignToStart bool
	StartupDelay time.Duration
}

// Scheduler drives aligned execution of recurring analysis runs.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the run function at each aligned interval until
// ctx is cancelled. A failed run is logged and the loop continues.
func (s *Scheduler) Run(ctx context.Context, run RunFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	next := s.nextRun(time.Now().UTC())
	for {
		delay := time.Until(next)
		if delay < 0 {
			next = s.nextRun(time.Now().UTC())
			delay = time.Until(next)
		}

		timer := time.NewTimer(delay)
		s.logger.Debug().Time("next_run", next).Msg("waiting for next analysis run")

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			timer.Stop()
		}

		at := next
		if !s.opts.AlignToStart {
			at = time.Now().UTC()
		}
		s.logger.Info().Time("run", at).Msg("executing scheduled analysis")

		if err := run(ctx, at); err != nil {
			s.logger.Error().Err(err).Time("run", at).Msg("scheduled analysis failed")
		}

		next = next.Add(s.opts.Interval)
	}
}

func (s *Scheduler) nextRun(now time.Time) time.Time {
	if !s.opts.AlignToStart {
		return now.Add(s.opts.Interval)
	}
	aligned := now.Truncate(s.opts.Interval)
	if !aligned.After(now) {
		aligned = aligned.Add(s.opts.Interval)
	}
	return aligned
}
