package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter enforces the same fixed-window contract with shared counters,
// so the limit holds across service instances. Counter keys are
// namespace-prefixed and expire with the window.
type RedisLimiter struct {
	client    *redis.Client
	cfg       Config
	namespace string
}

func NewRedisLimiter(client *redis.Client, namespace string, cfg Config) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		cfg:       cfg,
		namespace: namespace,
	}
}

func (l *RedisLimiter) key(key string) string {
	return "ratelimit:" + l.namespace + ":" + key
}

func (l *RedisLimiter) Allow(key string) bool {
	ctx := context.Background()
	k := l.key(key)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		// Fail open: a broken counter store must not block bookings.
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, k, l.cfg.Window)
	}
	return count <= int64(l.cfg.MaxAttempts)
}

func (l *RedisLimiter) RemainingTime(key string) time.Duration {
	ctx := context.Background()
	k := l.key(key)

	count, err := l.client.Get(ctx, k).Int64()
	if err == redis.Nil || err != nil {
		return 0
	}
	if count < int64(l.cfg.MaxAttempts) {
		return 0
	}

	ttl, err := l.client.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}
