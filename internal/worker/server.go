package worker

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatchq/internal/config"
	"dispatchq/internal/domain"
	"dispatchq/internal/infra/redisstate"
	"dispatchq/internal/ports"
	"dispatchq/internal/state"
	"dispatchq/internal/usecase"

	"github.com/rs/zerolog/log"
)

type Config struct {
	// TaskDuration is how long the simulated execution of one task takes.
	TaskDuration time.Duration
	// PollInterval bounds how long the worker blocks on the wake list before
	// running an unprompted turn. A lost wake therefore delays the backlog
	// by at most one interval.
	PollInterval time.Duration
}

func Run(cfg Config) error {
	appCfg := config.Load()
	cli := redisstate.New(appCfg.Redis)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Connect(ctx); err != nil {
		return err
	}

	states := state.NewManager(cli, appCfg.Redis.StateKey)
	dispatcher := usecase.Dispatcher{
		States: states,
		Waker:  cli,
		Runner: simulatedRunner(cfg.TaskDuration),
		Policy: usecase.Policy{
			Ceiling:         appCfg.Queue.Ceiling,
			RateLimit:       appCfg.Queue.RateLimit,
			RateWindow:      appCfg.Queue.RateWindow,
			StartsRetention: appCfg.Queue.StartsRetention,
		},
	}

	log.Ctx(ctx).Info().
		Int("ceiling", appCfg.Queue.Ceiling).
		Int("rate_limit", appCfg.Queue.RateLimit).
		Dur("rate_window", appCfg.Queue.RateWindow).
		Msg("dispatcher running")

	for {
		woken, err := cli.Wait(ctx, cfg.PollInterval)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Ctx(ctx).Warn().Err(err).Msg("wake wait failed, falling back to poll")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.PollInterval):
			}
		}
		if !woken {
			log.Ctx(ctx).Debug().Msg("poll turn")
		}
		if err := dispatcher.RunTurn(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Ctx(ctx).Error().Err(err).Msg("dispatch turn failed")
		}
	}
}

// simulatedRunner stands in for the real execution collaborator: it sleeps
// for a fixed duration, and fails tasks whose payload kind asks for it so
// the failure path stays demonstrable end to end.
func simulatedRunner(d time.Duration) ports.RunnerFunc {
	return func(ctx context.Context, t domain.Task) error {
		if t.Payload["kind"] == "demo.fail" {
			return errors.New("simulated failure")
		}
		select {
		case <-time.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
