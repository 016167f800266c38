package infra

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to addr and pings it, retrying while the server comes up. An
// empty addr returns (nil, nil): the assignment cache is optional and callers run
// without it.
func NewRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	if err := retryTransient(ctx, 3, ping); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
