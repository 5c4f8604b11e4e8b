package redisstate

import (
	"context"
	"errors"
	"time"

	"dispatchq/internal/ports"

	"github.com/redis/go-redis/v9"
)

var (
	_ ports.Waker      = (*Client)(nil)
	_ ports.WakeSource = (*Client)(nil)
)

// Wake pushes a marker onto the wake list. At-least-once, loss-tolerant:
// a dropped marker only delays the backlog until the next wake or poll.
func (c *Client) Wake(ctx context.Context) error {
	return c.Rdb.LPush(ctx, c.Cfg.WakeKey, "1").Err()
}

// Wait blocks on the wake list for up to timeout. (false, nil) means the
// timeout elapsed with no signal; the worker runs a poll turn then.
func (c *Client) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	_, err := c.Rdb.BLPop(ctx, timeout, c.Cfg.WakeKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
