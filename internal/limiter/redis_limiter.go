package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/logger"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces limiter counters
const keyPrefix = "ratelimit:taxrate:"

// fixedWindowScript increments the window counter and sets its expiry on first use
//
// KEYS[1] = counter key, ARGV[1] = TTL in milliseconds
var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter is a fixed-window limiter shared by every instance that uses the same Redis
//
// Key format: ratelimit:taxrate:{client}:{window start unix ms}
type RedisLimiter struct {
	client   *redis.Client
	requests int64
	window   time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

// NewRedisLimiter connects to Redis and allows requests requests per window for each client
func NewRedisLimiter(ctx context.Context, addr, password string, db int, requests int, window time.Duration, log *logger.Logger) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	return newRedisLimiter(client, requests, window, log), nil
}

func newRedisLimiter(client *redis.Client, requests int, window time.Duration, log *logger.Logger) *RedisLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLimiter{
		client:   client,
		requests: int64(requests),
		window:   window,
		logger:   log.WithComponent("RedisLimiter"),
		now:      time.Now,
	}
}

// Allow implements Limiter
// Redis errors fail open so an outage does not block every caller
func (rl *RedisLimiter) Allow(ctx context.Context, key string) bool {
	windowStart := rl.now().Truncate(rl.window).UnixMilli()
	redisKey := fmt.Sprintf("%s%s:%d", keyPrefix, key, windowStart)

	count, err := fixedWindowScript.Run(ctx, rl.client, []string{redisKey}, (2 * rl.window).Milliseconds()).Int64()
	if err != nil {
		rl.logger.Warn().Err(err).Str("client", key).Msg("Rate limiter unavailable, allowing request")
		return true
	}

	return count <= rl.requests
}

// Window implements Limiter
func (rl *RedisLimiter) Window() time.Duration {
	return rl.window
}

// Close closes the Redis connection
func (rl *RedisLimiter) Close() error {
	if rl.client != nil {
		return rl.client.Close()
	}
	return nil
}
