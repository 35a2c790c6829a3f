// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"resume-matcher/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// IncrWithExpiry increments key and sets its TTL when the key has none yet.
// Returns the post-increment count and the remaining TTL.
func (c *RedisClient) IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error) {
	pipe := c.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("redis incr %s: %w", key, err)
	}

	remaining := pttl.Val()
	if remaining < 0 {
		if err := c.Client.PExpire(ctx, key, ttl).Err(); err != nil {
			return 0, 0, fmt.Errorf("redis expire %s: %w", key, err)
		}
		remaining = ttl
	}
	return incr.Val(), remaining, nil
}
