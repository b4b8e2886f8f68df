package service

import (
	"context"

	"github.com/rs/zerolog"
)

// saga records undo actions for the side effects of a multi-step operation.
type saga struct {
	steps []sagaStep
}

type sagaStep struct {
	name string
	undo func(ctx context.Context) error
}

func (s *saga) onFailure(name string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, undo: undo})
}

// compensate runs the recorded undo actions newest first. It keeps going
// past failures and logs them; whatever is left is for the audit to find.
// Cancellation of the request does not stop cleanup.
func (s *saga) compensate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	log := zerolog.Ctx(ctx)
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(ctx); err != nil {
			log.Error().Err(err).Str("step", step.name).Msg("compensation failed")
			continue
		}
		log.Warn().Str("step", step.name).Msg("compensated")
	}
	s.steps = nil
}
