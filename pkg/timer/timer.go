package timer

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ---------------------------------------------------------
// Mode 1: Function Level (The "Defer" pattern)
// ---------------------------------------------------------

// Track returns a function that, when executed, logs the duration at debug
// level on the context logger.
// Usage: defer timer.Track(ctx, "FunctionName")()
func Track(ctx context.Context, name string) func() {
	start := time.Now()
	return func() {
		zerolog.Ctx(ctx).Debug().Str("op", name).Dur("took", time.Since(start)).Msg("timing")
	}
}

// ---------------------------------------------------------
// Mode 2: Block Level (The "Stopwatch" pattern)
// ---------------------------------------------------------

// Stopwatch is useful for measuring multiple steps within one function.
type Stopwatch struct {
	ctx   context.Context
	start time.Time
	last  time.Time
}

// NewStopwatch starts the clock.
func NewStopwatch(ctx context.Context) *Stopwatch {
	now := time.Now()
	return &Stopwatch{ctx: ctx, start: now, last: now}
}

// Lap logs the time taken since the last Lap call and returns it.
func (s *Stopwatch) Lap(stepName string) time.Duration {
	now := time.Now()
	elapsed := now.Sub(s.last)
	s.last = now
	zerolog.Ctx(s.ctx).Debug().
		Str("step", stepName).
		Dur("took", elapsed).
		Dur("total", now.Sub(s.start)).
		Msg("timing")
	return elapsed
}

// Total logs the total time since the stopwatch started and returns it.
func (s *Stopwatch) Total(name string) time.Duration {
	total := time.Since(s.start)
	zerolog.Ctx(s.ctx).Debug().Str("op", name).Dur("total", total).Msg("timing")
	return total
}
