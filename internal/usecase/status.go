package usecase

import (
	"context"
	"time"

	"dispatchq/internal/domain"
	"dispatchq/internal/state"
)

// StatusView is the read-only projection of the queue aggregate.
type StatusView struct {
	Pending       []domain.Task  `json:"pending"`
	InFlight      []domain.Task  `json:"in_flight"`
	CompletedTail []domain.Task  `json:"completed_tail"`
	Counts        StatusCounts   `json:"counts"`
	RateLimit     *RateLimitView `json:"rate_limit,omitempty"`
}

type StatusCounts struct {
	Pending   int `json:"pending"`
	InFlight  int `json:"in_flight"`
	Completed int `json:"completed"`
}

// RateLimitView reports sliding-window utilization. ResetAt is the earliest
// in-window start plus the window length, nil when nothing is in-window.
type RateLimitView struct {
	Limit         int        `json:"limit"`
	WindowSeconds int        `json:"window_seconds"`
	Used          int        `json:"used"`
	Remaining     int        `json:"remaining"`
	ResetAt       *time.Time `json:"reset_at"`
}

// Status derives the projection from a single, possibly stale, read.
// Readers never retry: they do not write, so staleness is harmless.
type Status struct {
	States *state.Manager
	Policy Policy
	Tail   int
	Now    func() time.Time
}

func (st Status) Read(ctx context.Context) (*StatusView, error) {
	s, err := st.States.View(ctx)
	if err != nil {
		return nil, err
	}
	now := st.now()

	v := &StatusView{
		Pending:       resolve(s, s.Pending),
		InFlight:      resolve(s, s.InFlight),
		CompletedTail: resolve(s, lastN(s.Completed, st.tailLen())),
		Counts: StatusCounts{
			Pending:   len(s.Pending),
			InFlight:  len(s.InFlight),
			Completed: len(s.Completed),
		},
	}

	if st.Policy.RateLimit > 0 {
		window := st.Policy.window()
		used := s.RecentStarts(now, window)
		rl := &RateLimitView{
			Limit:         st.Policy.RateLimit,
			WindowSeconds: int(window / time.Second),
			Used:          used,
			Remaining:     max(st.Policy.RateLimit-used, 0),
		}
		if oldest := s.OldestInWindow(now, window); !oldest.IsZero() {
			reset := oldest.Add(window)
			rl.ResetAt = &reset
		}
		v.RateLimit = rl
	}
	return v, nil
}

// resolve maps identifiers to task records, skipping dangling ones.
func resolve(s *domain.QueueState, ids []string) []domain.Task {
	out := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.Tasks[id]; ok {
			out = append(out, *t)
		}
	}
	return out
}

func lastN(ids []string, n int) []string {
	if len(ids) <= n {
		return ids
	}
	return ids[len(ids)-n:]
}

func (st Status) tailLen() int {
	if st.Tail > 0 {
		return st.Tail
	}
	return 20
}

func (st Status) now() time.Time {
	if st.Now != nil {
		return st.Now()
	}
	return time.Now()
}
