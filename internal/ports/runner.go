package ports

import (
	"context"

	"dispatchq/internal/domain"
)

// Runner executes a claimed task's payload. The dispatcher holds no state
// locks across this call, so a slow run never stalls admission. A returned
// error marks the task failed; there is no automatic retry.
type Runner interface {
	Run(ctx context.Context, t domain.Task) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, t domain.Task) error

func (f RunnerFunc) Run(ctx context.Context, t domain.Task) error { return f(ctx, t) }
