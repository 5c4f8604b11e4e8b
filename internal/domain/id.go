package domain

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var idSeq atomic.Uint64

// NewTaskID mints a collision-resistant task identifier. The millisecond
// prefix and per-process counter bias IDs toward creation order so ties can
// be broken lexically; the uuid suffix keeps two processes minting in the
// same millisecond from colliding.
func NewTaskID(now time.Time) string {
	seq := idSeq.Add(1)
	return fmt.Sprintf("%013d-%05d-%s", now.UnixMilli(), seq%100000, uuid.NewString()[:8])
}
