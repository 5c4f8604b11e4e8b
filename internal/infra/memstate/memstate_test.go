package memstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatchq/internal/domain"
)

func TestGetMissingKey(t *testing.T) {
	t.Parallel()
	s := New()

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("got %q", got)
	}

	// Returned slice is a copy, not a window into the store.
	got[0] = 'X'
	again, _ := s.Get(ctx, "k")
	if string(again) != "v1" {
		t.Fatalf("caller mutation leaked into store: %q", again)
	}
}

func TestCompareAndSet(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if err := s.CompareAndSet(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("first CAS on absent key should win: %v", err)
	}
	if err := s.CompareAndSet(ctx, "k", []byte("v2"), 0); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("stale CAS should conflict, got %v", err)
	}
	if err := s.CompareAndSet(ctx, "k", []byte("v2"), 1); err != nil {
		t.Fatalf("CAS at current version: %v", err)
	}

	got, _ := s.Get(ctx, "k")
	if string(got) != "v2" {
		t.Fatalf("got %q", got)
	}
}

func TestWakeCoalescesAndWaits(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	// Multiple wakes coalesce into one pending signal.
	for i := 0; i < 5; i++ {
		if err := s.Wake(ctx); err != nil {
			t.Fatalf("wake: %v", err)
		}
	}

	woken, err := s.Wait(ctx, 10*time.Millisecond)
	if err != nil || !woken {
		t.Fatalf("expected pending wake, woken=%v err=%v", woken, err)
	}
	woken, err = s.Wait(ctx, 10*time.Millisecond)
	if err != nil || woken {
		t.Fatalf("coalesced wakes should leave nothing pending, woken=%v err=%v", woken, err)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	t.Parallel()
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Wait(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
