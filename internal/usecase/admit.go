package usecase

import (
	"context"
	"time"

	"dispatchq/internal/domain"
	"dispatchq/internal/ports"
	"dispatchq/internal/state"

	"github.com/rs/zerolog/log"
)

// Admitter accepts new work into the pending sequence. Admission is always
// unlimited: saturation of the concurrency or rate gates only delays a
// task's start, never its acceptance.
type Admitter struct {
	States *state.Manager
	Waker  ports.Waker
	Now    func() time.Time
}

// Admit appends a pending task for the given payload and returns its ID and
// position in the pending sequence. A wake for the dispatcher is requested
// best-effort afterwards; a lost wake is logged and swallowed because any
// later wake or poll turn picks the task up. Persistence failure after
// retries surfaces domain.ErrUnavailable and the task is not queued.
func (a Admitter) Admit(ctx context.Context, payload map[string]string) (string, int, error) {
	now := a.now()
	id := domain.NewTaskID(now)

	var position int
	_, err := a.States.Update(ctx, func(s *domain.QueueState) error {
		s.Tasks[id] = &domain.Task{
			ID:        id,
			Payload:   payload,
			Status:    domain.StatusPending,
			CreatedAt: now,
		}
		s.Pending = append(s.Pending, id)
		position = len(s.Pending) - 1
		return nil
	})
	if err != nil {
		return "", 0, err
	}

	if err := a.Waker.Wake(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("task", id).Msg("dispatch wake not delivered, task stays queued")
	}
	return id, position, nil
}

func (a Admitter) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
