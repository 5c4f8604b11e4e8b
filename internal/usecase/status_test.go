package usecase

import (
	"context"
	"testing"
	"time"

	"dispatchq/internal/domain"
)

func TestStatusCountsAndTail(t *testing.T) {
	t.Parallel()
	e := newTestEnv()
	e.admitN(t, 6)

	d := e.dispatcher(Policy{}, instantRunner())
	for i := 0; i < 4; i++ {
		if err := d.RunTurn(context.Background()); err != nil {
			t.Fatalf("turn: %v", err)
		}
	}

	st := Status{States: e.states, Tail: 3, Now: e.clock.Now}
	v, err := st.Read(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	if v.Counts.Pending != 2 || v.Counts.InFlight != 0 || v.Counts.Completed != 4 {
		t.Fatalf("counts = %+v", v.Counts)
	}
	if len(v.CompletedTail) != 3 {
		t.Fatalf("tail should be bounded to 3, got %d", len(v.CompletedTail))
	}
	// Tail holds the most recent completions in order.
	last := v.CompletedTail[len(v.CompletedTail)-1]
	if last.Status != domain.StatusCompleted {
		t.Fatalf("tail entry status = %s", last.Status)
	}
	if v.RateLimit != nil {
		t.Fatal("rate limit view should be absent when the gate is disabled")
	}
}

func TestStatusRateLimitUtilization(t *testing.T) {
	t.Parallel()
	e := newTestEnv()
	e.admitN(t, 3)

	policy := Policy{RateLimit: 5, RateWindow: 60 * time.Second}
	d := e.dispatcher(policy, instantRunner())
	start := e.clock.Now()
	if err := d.RunTurn(context.Background()); err != nil {
		t.Fatalf("turn: %v", err)
	}
	e.clock.Advance(10 * time.Second)
	if err := d.RunTurn(context.Background()); err != nil {
		t.Fatalf("turn: %v", err)
	}

	st := Status{States: e.states, Policy: policy, Now: e.clock.Now}
	v, err := st.Read(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	rl := v.RateLimit
	if rl == nil {
		t.Fatal("rate limit view missing")
	}
	if rl.Limit != 5 || rl.WindowSeconds != 60 {
		t.Fatalf("limit/window = %d/%d", rl.Limit, rl.WindowSeconds)
	}
	if rl.Used != 2 || rl.Remaining != 3 {
		t.Fatalf("used/remaining = %d/%d", rl.Used, rl.Remaining)
	}
	if rl.ResetAt == nil {
		t.Fatal("resetAt should be set while starts are in-window")
	}
	// Budget frees when the earliest in-window start ages out.
	if want := start.Add(60 * time.Second); !rl.ResetAt.Equal(want) {
		t.Fatalf("resetAt = %v, want %v", rl.ResetAt, want)
	}
}

func TestStatusResetAtNilWhenWindowEmpty(t *testing.T) {
	t.Parallel()
	e := newTestEnv()
	e.admitN(t, 1)

	policy := Policy{RateLimit: 2, RateWindow: 60 * time.Second, StartsRetention: 10 * time.Minute}
	d := e.dispatcher(policy, instantRunner())
	if err := d.RunTurn(context.Background()); err != nil {
		t.Fatalf("turn: %v", err)
	}
	e.clock.Advance(2 * time.Minute)

	st := Status{States: e.states, Policy: policy, Now: e.clock.Now}
	v, err := st.Read(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if v.RateLimit == nil {
		t.Fatal("rate limit view missing")
	}
	if v.RateLimit.Used != 0 || v.RateLimit.ResetAt != nil {
		t.Fatalf("aged-out window should report zero used and nil resetAt, got %+v", v.RateLimit)
	}
}
