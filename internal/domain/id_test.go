package domain

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewTaskIDUniqueUnderConcurrency(t *testing.T) {
	t.Parallel()
	const n = 200
	now := time.Now()

	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- NewTaskID(now)
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id minted: %s", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(seen))
	}
}

func TestNewTaskIDOrderBias(t *testing.T) {
	t.Parallel()
	earlier := NewTaskID(time.Unix(1000, 0))
	later := NewTaskID(time.Unix(2000, 0))

	if strings.Compare(earlier, later) >= 0 {
		t.Fatalf("earlier id %q should sort before later id %q", earlier, later)
	}
}
