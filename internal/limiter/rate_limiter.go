package limiter

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	// Allow reports whether a request from key (usually the client IP) may proceed
	Allow(ctx context.Context, key string) bool

	// Window is the period the request budget applies to
	Window() time.Duration

	// Close cleans up any resources (Redis connections, etc.)
	Close() error
}

// idleBucketTTL is how long an unused bucket survives before cleanup
const idleBucketTTL = 5 * time.Minute

// TokenBucket holds the tokens of a single client
//
// Tokens refill continuously at refillRate per second up to capacity
// and each request spends one
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64
	lastRefill time.Time
}

// NewTokenBucket creates a full bucket
// Capacity is at least 1 so fractional rates still admit a first request
func NewTokenBucket(rate, capacity float64, now time.Time) *TokenBucket {
	capacity = max(capacity, 1.0)
	return &TokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: rate,
		lastRefill: now,
	}
}

// take refills for the time elapsed since the last call and spends a token if one is available
func (tb *TokenBucket) take(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if elapsed := now.Sub(tb.lastRefill).Seconds(); elapsed > 0 {
		tb.tokens = min(tb.tokens+elapsed*tb.refillRate, tb.capacity)
		tb.lastRefill = now
	}

	if tb.tokens >= 1.0 {
		tb.tokens--
		return true
	}
	return false
}

func (tb *TokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill
}

// MemoryLimiter keeps one token bucket per client in process memory
// Suitable for single-instance deployments
type MemoryLimiter struct {
	buckets  sync.Map // key -> *TokenBucket
	rate     float64
	capacity float64
	window   time.Duration
	now      func() time.Time

	cleanupMu   sync.Mutex
	lastCleanup time.Time
}

// NewMemoryLimiter allows requests requests per window for each client
func NewMemoryLimiter(requests int, window time.Duration) *MemoryLimiter {
	return newMemoryLimiter(requests, window, time.Now)
}

func newMemoryLimiter(requests int, window time.Duration, now func() time.Time) *MemoryLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &MemoryLimiter{
		rate:        float64(requests) / window.Seconds(),
		capacity:    float64(requests), // burst up to one full window
		window:      window,
		now:         now,
		lastCleanup: now(),
	}
}

// Window implements Limiter
func (rl *MemoryLimiter) Window() time.Duration {
	return rl.window
}

// Allow implements Limiter
func (rl *MemoryLimiter) Allow(_ context.Context, key string) bool {
	now := rl.now()

	bucket, ok := rl.buckets.Load(key)
	if !ok {
		bucket, _ = rl.buckets.LoadOrStore(key, NewTokenBucket(rl.rate, rl.capacity, now))
	}
	allowed := bucket.(*TokenBucket).take(now)

	rl.maybeCleanup(now)
	return allowed
}

// maybeCleanup drops buckets idle for longer than idleBucketTTL
func (rl *MemoryLimiter) maybeCleanup(now time.Time) {
	rl.cleanupMu.Lock()
	defer rl.cleanupMu.Unlock()

	if now.Sub(rl.lastCleanup) < idleBucketTTL {
		return
	}

	threshold := now.Add(-idleBucketTTL)
	rl.buckets.Range(func(key, value any) bool {
		if value.(*TokenBucket).idleSince().Before(threshold) {
			rl.buckets.Delete(key)
		}
		return true
	})
	rl.lastCleanup = now
}

// size returns the number of tracked clients
func (rl *MemoryLimiter) size() int {
	n := 0
	rl.buckets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close implements Limiter; there is nothing to release
func (rl *MemoryLimiter) Close() error {
	return nil
}
