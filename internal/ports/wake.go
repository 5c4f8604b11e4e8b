package ports

import (
	"context"
	"time"
)

// Waker delivers the fire-and-forget "run a dispatch turn" signal. Delivery
// is at-least-once at best; callers log and swallow errors because the
// worker's poll ticker eventually drains the backlog anyway.
type Waker interface {
	Wake(ctx context.Context) error
}

// WakeSource blocks until a wake signal arrives or the timeout passes.
// Returning (false, nil) on timeout lets the worker interleave poll turns.
type WakeSource interface {
	Wait(ctx context.Context, timeout time.Duration) (bool, error)
}
