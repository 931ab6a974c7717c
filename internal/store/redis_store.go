package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/evyataryagoni/wataxrate/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisAuditKey is the list that holds encoded records
	DefaultRedisAuditKey = "tax:lookups"

	// DefaultRedisAuditMaxEntries caps the list length
	DefaultRedisAuditMaxEntries = 10000
)

// RedisAuditLog implements AuditLog as a capped Redis list
//
// New records are pushed to the head, so LRANGE 0 n-1 is newest first
// Value: JSON-encoded models.LookupRecord
type RedisAuditLog struct {
	client     *redis.Client
	key        string
	maxEntries int64
}

// NewRedisAuditLog connects to Redis and verifies the connection
func NewRedisAuditLog(ctx context.Context, addr, password string, db int) (*RedisAuditLog, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAuditLog{
		client:     client,
		key:        DefaultRedisAuditKey,
		maxEntries: DefaultRedisAuditMaxEntries,
	}, nil
}

// Record pushes the record and trims the list in one pipeline
func (s *RedisAuditLog) Record(ctx context.Context, rec models.LookupRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode tax lookup: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, data)
		pipe.LTrim(ctx, s.key, 0, s.maxEntries-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

// Recent returns up to limit records from the head of the list
func (s *RedisAuditLog) Recent(ctx context.Context, limit int) ([]models.LookupRecord, error) {
	if limit <= 0 {
		return []models.LookupRecord{}, nil
	}

	vals, err := s.client.LRange(ctx, s.key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}

	records := make([]models.LookupRecord, 0, len(vals))
	for _, val := range vals {
		var rec models.LookupRecord
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close closes the Redis connection
func (s *RedisAuditLog) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
