package usecase

import (
	"context"

	"dispatchq/internal/domain"
	"dispatchq/internal/state"
)

// Clearer resets the queue aggregate to empty. Idempotent: clearing an
// already-empty queue commits the same empty state again.
type Clearer struct {
	States *state.Manager
}

func (c Clearer) Clear(ctx context.Context) error {
	_, err := c.States.Update(ctx, func(s *domain.QueueState) error {
		s.Clear()
		return nil
	})
	return err
}
