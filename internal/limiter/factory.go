package limiter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/logger"
)

// LimiterConfig holds configuration for creating a rate limiter
type LimiterConfig struct {
	Type     string        // "memory" or "redis"
	Requests int           // requests allowed per window
	Window   time.Duration // window length

	// Redis-specific config
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewLimiter creates a rate limiter based on the configuration (factory pattern)
func NewLimiter(ctx context.Context, cfg LimiterConfig, log *logger.Logger) (Limiter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "memory", "":
		return NewMemoryLimiter(cfg.Requests, cfg.Window), nil

	case "redis":
		limiter, err := NewRedisLimiter(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Requests, cfg.Window, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis limiter: %w", err)
		}
		return limiter, nil

	default:
		return nil, fmt.Errorf("unknown rate limiter type: %s (supported: 'memory', 'redis')", cfg.Type)
	}
}
