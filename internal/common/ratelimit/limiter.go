// Package ratelimit throttles resume uploads per client key.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resume-matcher/internal/common/config"
	"resume-matcher/internal/common/database"

	"golang.org/x/time/rate"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// New builds the limiter selected by cfg.Backend. A disabled config yields nil.
func New(cfg config.RateLimitConfig, redis *database.RedisClient) (Limiter, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case config.RateLimitBackendRedis:
		if redis == nil {
			return nil, fmt.Errorf("redis rate limit backend requires a redis client")
		}
		return NewRedisLimiter(redis, cfg.RequestsPerMinute, time.Minute), nil
	default:
		return NewMemoryLimiter(cfg.RequestsPerMinute, cfg.Burst), nil
	}
}

// MemoryLimiter is a per-key token bucket held in process memory.
type MemoryLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	visitorIdleTTL   = 10 * time.Minute
	visitorSweepSize = 4096
)

func NewMemoryLimiter(requestsPerMinute, burst int) *MemoryLimiter {
	if burst < 1 {
		burst = 1
	}
	return &MemoryLimiter{
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if len(m.visitors) >= visitorSweepSize {
		m.sweep(now)
	}

	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Allowed: false, RetryAfter: time.Minute}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true, Remaining: int(v.limiter.TokensAt(now))}, nil
}

func (m *MemoryLimiter) sweep(now time.Time) {
	for key, v := range m.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTTL {
			delete(m.visitors, key)
		}
	}
}

// RedisLimiter is a fixed-window counter shared by every replica.
type RedisLimiter struct {
	client *database.RedisClient
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *database.RedisClient, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:resume-match:",
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, ttl, err := r.client.IncrWithExpiry(ctx, r.prefix+key, r.window)
	if err != nil {
		return Decision{}, err
	}
	if int(count) > r.limit {
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Remaining: r.limit - int(count)}, nil
}
