// Package memstate is a fully in-memory state store and wake transport.
// Safe for concurrent access. Intended for unit testing and development.
package memstate

import (
	"context"
	"sync"
	"time"

	"dispatchq/internal/domain"
	"dispatchq/internal/ports"
)

var (
	_ ports.StateStore       = (*Store)(nil)
	_ ports.ConditionalStore = (*Store)(nil)
	_ ports.Waker            = (*Store)(nil)
	_ ports.WakeSource       = (*Store)(nil)
)

// Store keeps blobs in a mutex-guarded map and, unlike the Redis adapter,
// offers CompareAndSet: it tracks the version committed per key so a write
// racing on stale state is rejected with domain.ErrConflict instead of
// silently winning.
type Store struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	versions map[string]int64

	wake chan struct{}
}

func New() *Store {
	return &Store{
		blobs:    make(map[string][]byte),
		versions: make(map[string]int64),
		wake:     make(chan struct{}, 1),
	}
}

func (m *Store) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob, ok := m.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := append([]byte{}, blob...)
	return cp, nil
}

// Set overwrites unconditionally, mirroring the last-writer-wins contract
// of the weakest real store.
func (m *Store) Set(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = append([]byte{}, blob...)
	m.versions[key]++
	return nil
}

// CompareAndSet commits only if the key still holds expectedVersion. An
// absent key counts as version zero so the first writer wins cleanly.
func (m *Store) CompareAndSet(_ context.Context, key string, blob []byte, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.versions[key] != expectedVersion {
		return domain.ErrConflict
	}
	m.blobs[key] = append([]byte{}, blob...)
	m.versions[key] = expectedVersion + 1
	return nil
}

// Wake is non-blocking; coalescing concurrent wakes into one pending signal
// is fine because a single turn re-wakes itself while work remains.
func (m *Store) Wake(_ context.Context) error {
	select {
	case m.wake <- struct{}{}:
	default:
	}
	return nil
}

func (m *Store) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	select {
	case <-m.wake:
		return true, nil
	case <-time.After(timeout):
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
