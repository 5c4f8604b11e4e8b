package ports

import "context"

// StateStore is the single-key blob store holding the serialized queue
// aggregate. The contract is deliberately weak: no transactions, no
// cross-key atomicity, last writer wins. Get returns domain.ErrNotFound
// when the key has never been written.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
}

// ConditionalStore is an optional upgrade a store may offer. CompareAndSet
// writes the blob only if the stored aggregate still carries
// expectedVersion, returning domain.ErrConflict otherwise. The state
// manager prefers it when present, turning the soft concurrency gates into
// hard ones without changing any caller.
type ConditionalStore interface {
	CompareAndSet(ctx context.Context, key string, blob []byte, expectedVersion int64) error
}
