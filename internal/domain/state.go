package domain

import "time"

// QueueState is the single shared aggregate every actor reads, mutates and
// writes back as one serialized blob. The store gives last-writer-wins
// semantics only, so all mutations must go through the state manager's
// read-modify-write retry cycle.
type QueueState struct {
	// Pending holds task IDs in FIFO order: append at tail, pop from head.
	Pending []string `json:"pending"`
	// InFlight holds IDs of tasks currently executing. Its size stays at or
	// below the concurrency ceiling once racing turns settle.
	InFlight []string `json:"in_flight"`
	// Completed is the append-only history of finished task IDs.
	Completed []string `json:"completed"`
	// Tasks maps ID to the full record and is the source of truth for a
	// task's state. IDs are never reused.
	Tasks map[string]*Task `json:"tasks"`
	// Starts logs one timestamp per pending→in-flight transition, used for
	// the sliding-window rate limit. Pruned opportunistically on write.
	Starts []time.Time `json:"starts"`
	// Version counts committed writes. Stores with conditional writes use it
	// to detect lost races; plain stores carry it along untouched.
	Version int64 `json:"version"`
}

// NewQueueState returns an empty aggregate.
func NewQueueState() *QueueState {
	return &QueueState{
		Pending:   []string{},
		InFlight:  []string{},
		Completed: []string{},
		Tasks:     map[string]*Task{},
		Starts:    []time.Time{},
	}
}

// Clone deep-copies the aggregate so a mutation attempt never touches the
// snapshot it was derived from.
func (s *QueueState) Clone() *QueueState {
	c := &QueueState{
		Pending:   append([]string{}, s.Pending...),
		InFlight:  append([]string{}, s.InFlight...),
		Completed: append([]string{}, s.Completed...),
		Tasks:     make(map[string]*Task, len(s.Tasks)),
		Starts:    append([]time.Time{}, s.Starts...),
		Version:   s.Version,
	}
	for id, t := range s.Tasks {
		tc := *t
		c.Tasks[id] = &tc
	}
	return c
}

// Clear resets every collection. Clearing an already-empty state is a no-op.
func (s *QueueState) Clear() {
	s.Pending = []string{}
	s.InFlight = []string{}
	s.Completed = []string{}
	s.Tasks = map[string]*Task{}
	s.Starts = []time.Time{}
}

// RecentStarts counts start timestamps within the trailing window ending now.
func (s *QueueState) RecentStarts(now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	n := 0
	for _, ts := range s.Starts {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}

// OldestInWindow returns the earliest start timestamp still inside the
// trailing window, or the zero time when none is.
func (s *QueueState) OldestInWindow(now time.Time, window time.Duration) time.Time {
	cutoff := now.Add(-window)
	var oldest time.Time
	for _, ts := range s.Starts {
		if ts.After(cutoff) && (oldest.IsZero() || ts.Before(oldest)) {
			oldest = ts
		}
	}
	return oldest
}

// PruneStarts drops start timestamps older than the retention horizon. The
// horizon is kept longer than the rate window so recent history stays
// auditable.
func (s *QueueState) PruneStarts(now time.Time, retention time.Duration) {
	cutoff := now.Add(-retention)
	kept := s.Starts[:0]
	for _, ts := range s.Starts {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	s.Starts = kept
}

// RemoveInFlight deletes id from the in-flight set. Returns false when the id
// was not present, which callers treat as an already-handled race.
func (s *QueueState) RemoveInFlight(id string) bool {
	for i, v := range s.InFlight {
		if v == id {
			s.InFlight = append(s.InFlight[:i], s.InFlight[i+1:]...)
			return true
		}
	}
	return false
}
