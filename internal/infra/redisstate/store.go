package redisstate

import (
	"context"
	"errors"

	"dispatchq/internal/domain"
	"dispatchq/internal/ports"

	"github.com/redis/go-redis/v9"
)

var _ ports.StateStore = (*Client)(nil)

// Get and Set are a plain single-key GET/SET: last writer wins, no
// conditional write. Two racing full-snapshot writers can clobber each
// other's disjoint changes; the state manager's retry cycle narrows that
// window but does not close it on this adapter.

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := c.Rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

func (c *Client) Set(ctx context.Context, key string, blob []byte) error {
	return c.Rdb.Set(ctx, key, blob, 0).Err()
}
