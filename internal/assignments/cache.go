package assignments

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a grant made on another instance can go unseen.
const DefaultCacheTTL = 5 * time.Minute

// generationTTL keeps a principal's generation counter far longer than any read
// that depends on it.
const generationTTL = 24 * time.Hour

// Cache holds each principal's stored assignments as JSON. It caches the stored
// history, not a permission result, so expiry is still evaluated on every check.
//
// Each principal also has a generation counter that Invalidate bumps. A reader
// takes the generation before querying storage and Set only writes if it is
// unchanged, so a read that raced a mutation never repopulates the cache.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(principalID string) string { return "rolegate:assignments:" + principalID }

func generationKey(principalID string) string { return "rolegate:assignments-gen:" + principalID }

// Get returns the cached records, or (nil, false, nil) on a miss.
func (c *Cache) Get(ctx context.Context, principalID string) ([]Record, bool, error) {
	b, err := c.rdb.Get(ctx, cacheKey(principalID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var recs []Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, false, err
	}
	return recs, true, nil
}

// Generation returns the principal's current generation, 0 if never invalidated.
func (c *Cache) Generation(ctx context.Context, principalID string) (int64, error) {
	n, err := c.rdb.Get(ctx, generationKey(principalID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Set stores recs if the principal's generation is still gen. A stale write is
// dropped without error.
func (c *Cache) Set(ctx context.Context, principalID string, gen int64, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	genKey := generationKey(principalID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if errors.Is(err, redis.Nil) {
			cur = 0
		} else if err != nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(principalID), b, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate drops the cached records and bumps the generation.
func (c *Cache) Invalidate(ctx context.Context, principalID string) error {
	genKey := generationKey(principalID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, cacheKey(principalID))
		return nil
	})
	return err
}
