package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/aircargo/config"
	"github.com/redis/go-redis/v9"
)

// RedisCounter hands out per-key sequence numbers with INCR, so concurrent
// callers never observe the same value.
type RedisCounter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCounter(cfg config.RedisConfig, ttl time.Duration) *RedisCounter {
	return &RedisCounter{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

// Next initialises key to seed when it does not exist yet and returns the
// incremented value.
func (c *RedisCounter) Next(ctx context.Context, key string, seed int64) (int64, error) {
	pipe := c.client.TxPipeline()
	pipe.SetNX(ctx, sequenceKey(key), seed, c.ttl)
	incr := pipe.Incr(ctx, sequenceKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", key, err)
	}
	return incr.Val(), nil
}

func (c *RedisCounter) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}

func sequenceKey(key string) string {
	return "seq:" + key
}
