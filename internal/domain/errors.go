package domain

import "errors"

var (
	// ErrUnavailable means a state write kept losing to the store after
	// exhausting retries. Callers may retry the whole operation later.
	ErrUnavailable = errors.New("queue state temporarily unavailable")

	// ErrNotFound is returned by stores when the state key has never been
	// written. The state manager maps it to a fresh empty aggregate.
	ErrNotFound = errors.New("state not found")

	// ErrConflict is returned by conditional stores when a write raced with
	// another writer and lost.
	ErrConflict = errors.New("state version conflict")
)
