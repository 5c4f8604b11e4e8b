package usecase

import (
	"context"
	"time"

	"dispatchq/internal/domain"
	"dispatchq/internal/ports"
	"dispatchq/internal/state"

	"github.com/rs/zerolog/log"
)

// Policy holds the two admission gates. Either, both, or neither may be
// active: a zero Ceiling disables the concurrency gate, a zero RateLimit
// disables the sliding-window gate.
type Policy struct {
	Ceiling         int
	RateLimit       int
	RateWindow      time.Duration
	StartsRetention time.Duration
}

func (p Policy) window() time.Duration {
	if p.RateWindow > 0 {
		return p.RateWindow
	}
	return 60 * time.Second
}

func (p Policy) retention() time.Duration {
	if p.StartsRetention > p.window() {
		return p.StartsRetention
	}
	return p.window()
}

// Dispatcher runs discrete dispatch turns: claim the head of pending if the
// gates allow, execute it with no state pinned, record completion, and wake
// the next turn. Any number of turns may race across workers; the gates are
// soft limits because checking and committing are separate writes against a
// last-writer-wins store.
type Dispatcher struct {
	States *state.Manager
	Waker  ports.Waker
	Runner ports.Runner
	Policy Policy
	Now    func() time.Time
}

// RunTurn performs one turn. It returns nil both when a task was processed
// and when there was nothing eligible to start.
func (d Dispatcher) RunTurn(ctx context.Context) error {
	claimed, err := d.claim(ctx)
	if err != nil {
		return err
	}
	if claimed == nil {
		return nil
	}

	log.Ctx(ctx).Info().Str("task", claimed.ID).Msg("task started")
	runErr := d.Runner.Run(ctx, *claimed)

	if err := d.complete(ctx, claimed.ID, runErr); err != nil {
		return err
	}
	d.rewake(ctx)
	return nil
}

// claim pops the pending head into in-flight if both gates are open.
// Returns nil when the queue is empty or a gate is closed; nothing is
// consumed in that case.
func (d Dispatcher) claim(ctx context.Context) (*domain.Task, error) {
	var claimed *domain.Task
	_, err := d.States.Update(ctx, func(s *domain.QueueState) error {
		claimed = nil
		now := d.now()

		// Identifiers present in pending but missing from the task map are a
		// consistency anomaly: drop them and keep going. The cleanup is
		// committed even when no claim follows.
		dropped := false
		for len(s.Pending) > 0 {
			if _, ok := s.Tasks[s.Pending[0]]; ok {
				break
			}
			log.Ctx(ctx).Warn().Str("task", s.Pending[0]).Msg("pending id has no task record, dropping")
			s.Pending = s.Pending[1:]
			dropped = true
		}

		noClaim := func() error {
			if dropped {
				return nil
			}
			return state.ErrNoChange
		}
		if len(s.Pending) == 0 {
			return noClaim()
		}
		if d.Policy.Ceiling > 0 && len(s.InFlight) >= d.Policy.Ceiling {
			return noClaim()
		}
		if d.Policy.RateLimit > 0 && s.RecentStarts(now, d.Policy.window()) >= d.Policy.RateLimit {
			return noClaim()
		}

		id := s.Pending[0]
		s.Pending = s.Pending[1:]
		t := s.Tasks[id]
		t.Status = domain.StatusInFlight
		started := now
		t.StartedAt = &started
		s.InFlight = append(s.InFlight, id)
		s.Starts = append(s.Starts, now)
		s.PruneStarts(now, d.Policy.retention())

		tc := *t
		claimed = &tc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// complete moves the task out of in-flight against freshly re-read state,
// marking it completed or failed depending on the runner's verdict.
func (d Dispatcher) complete(ctx context.Context, id string, runErr error) error {
	_, err := d.States.Update(ctx, func(s *domain.QueueState) error {
		if !s.RemoveInFlight(id) {
			log.Ctx(ctx).Warn().Str("task", id).Msg("completed task was not in-flight")
		}
		now := d.now()
		t, ok := s.Tasks[id]
		if !ok {
			log.Ctx(ctx).Warn().Str("task", id).Msg("completed task has no record")
			return nil
		}
		t.FinishedAt = &now
		if runErr != nil {
			t.Status = domain.StatusFailed
			t.Error = runErr.Error()
		} else {
			t.Status = domain.StatusCompleted
		}
		s.Completed = append(s.Completed, id)
		return nil
	})
	if err != nil {
		return err
	}
	if runErr != nil {
		log.Ctx(ctx).Warn().Err(runErr).Str("task", id).Msg("task failed")
	} else {
		log.Ctx(ctx).Info().Str("task", id).Msg("task completed")
	}
	return nil
}

// rewake asks for another turn when more work may be eligible. Dispatch
// continues through the wake transport rather than direct recursion so each
// turn stays an independently schedulable unit.
func (d Dispatcher) rewake(ctx context.Context) {
	s, err := d.States.View(ctx)
	if err != nil || len(s.Pending) == 0 {
		return
	}
	if err := d.Waker.Wake(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("re-trigger wake not delivered")
	}
}

func (d Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
