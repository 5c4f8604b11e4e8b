package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatchq/internal/domain"
	"dispatchq/internal/ports"
	"dispatchq/pkg/backoff"

	"github.com/rs/zerolog/log"
)

// ErrNoChange is returned by a mutation callback to abandon the cycle
// without writing. Update treats it as success and hands back the snapshot
// the callback saw.
var ErrNoChange = errors.New("state unchanged")

// Manager wraps every read-modify-write cycle against the state store.
// The store gives no atomicity beyond a single-key write, so the only safe
// pattern is: re-read fresh state each attempt, mutate a copy, write, and
// retry the whole cycle on failure. A stale copy is never reused.
type Manager struct {
	Store       ports.StateStore
	Key         string
	Attempts    int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func NewManager(store ports.StateStore, key string) *Manager {
	return &Manager{
		Store:       store,
		Key:         key,
		Attempts:    5,
		BaseBackoff: 25 * time.Millisecond,
		MaxBackoff:  1 * time.Second,
	}
}

// View reads the current aggregate without a retry loop. Readers tolerate
// staleness; a missing key means the queue has simply never been touched.
func (m *Manager) View(ctx context.Context) (*domain.QueueState, error) {
	blob, err := m.Store.Get(ctx, m.Key)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewQueueState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return decode(blob)
}

// Update runs the full read → copy → mutate → write cycle, retrying with
// jittered backoff on write failure or version conflict. The mutation
// callback may be invoked several times and must be side-effect free; it
// returns the committed aggregate on success. Exhausting every attempt
// surfaces domain.ErrUnavailable — never a partially applied mutation.
func (m *Manager) Update(ctx context.Context, mutate func(s *domain.QueueState) error) (*domain.QueueState, error) {
	var lastErr error
	for attempt := 1; attempt <= m.Attempts; attempt++ {
		if attempt > 1 {
			delay := backoff.ExponentialJitter(m.BaseBackoff, m.MaxBackoff, attempt-1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		cur, err := m.View(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		next := cur.Clone()
		if err := mutate(next); errors.Is(err, ErrNoChange) {
			return cur, nil
		} else if err != nil {
			return nil, err
		}
		next.Version = cur.Version + 1

		blob, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encode state: %w", err)
		}

		if cas, ok := m.Store.(ports.ConditionalStore); ok {
			err = cas.CompareAndSet(ctx, m.Key, blob, cur.Version)
		} else {
			err = m.Store.Set(ctx, m.Key, blob)
		}
		if err == nil {
			return next, nil
		}
		lastErr = err
		if errors.Is(err, domain.ErrConflict) {
			log.Ctx(ctx).Debug().Int("attempt", attempt).Msg("state write lost a race, re-reading")
			continue
		}
		log.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("state write failed")
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, lastErr)
}

func decode(blob []byte) (*domain.QueueState, error) {
	s := domain.NewQueueState()
	if err := json.Unmarshal(blob, s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	// A hand-written or trimmed blob may omit collections entirely.
	if s.Tasks == nil {
		s.Tasks = map[string]*domain.Task{}
	}
	return s, nil
}
