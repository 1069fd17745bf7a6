// Package ratelimit throttles form re-submissions and final booking
// attempts. Limiters are explicitly constructed with their own
// window/threshold configuration so deployments can swap the in-memory
// implementation for the Redis-backed one without touching callers.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter gates attempts under a client key within a fixed window. This is
// advisory throttling: the secure booking call must not rely on it as a
// security control.
type Limiter interface {
	// Allow records and permits a new attempt under key unless the window
	// budget is already spent.
	Allow(key string) bool
	// RemainingTime returns how long until the next attempt under key would
	// be allowed. Zero means an attempt is allowed right now.
	RemainingTime(key string) time.Duration
}

type Config struct {
	MaxAttempts int
	Window      time.Duration
}

type entry struct {
	count       int
	windowStart time.Time
}

// MemoryLimiter is the process-local fixed-window limiter. State is not
// persisted and resets on restart; a multi-instance deployment should use
// RedisLimiter instead since per-instance counters do not enforce a global
// limit.
type MemoryLimiter struct {
	cfg     Config
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:     cfg,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.cfg.Window {
		l.entries[key] = &entry{count: 1, windowStart: now}
		return true
	}

	if e.count >= l.cfg.MaxAttempts {
		return false
	}
	e.count++
	return true
}

func (l *MemoryLimiter) RemainingTime(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		return 0
	}

	elapsed := now.Sub(e.windowStart)
	if elapsed >= l.cfg.Window || e.count < l.cfg.MaxAttempts {
		return 0
	}
	return l.cfg.Window - elapsed
}

// Sweep drops entries whose window has elapsed. Called periodically so the
// map does not grow with one entry per client forever.
func (l *MemoryLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.entries {
		if now.Sub(e.windowStart) >= l.cfg.Window {
			delete(l.entries, key)
		}
	}
}
