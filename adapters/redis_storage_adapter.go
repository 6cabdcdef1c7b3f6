package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorageAdapter stores the session record in Redis. The key carries a
// TTL so abandoned records age out on their own.
type RedisStorageAdapter struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// Ensure RedisStorageAdapter implements StorageAdapter interface
var _ StorageAdapter = (*RedisStorageAdapter)(nil)

// NewRedisStorageAdapter creates a Redis-backed storage adapter. key is the
// Redis key holding the record; ttl bounds how long an untouched record
// lives (0 means no expiry).
func NewRedisStorageAdapter(client *redis.Client, key string, ttl time.Duration) *RedisStorageAdapter {
	return &RedisStorageAdapter{client: client, key: key, ttl: ttl}
}

func (r *RedisStorageAdapter) Save(ctx context.Context, record SessionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("storage: failed to marshal record: %w", err)
	}
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}

func (r *RedisStorageAdapter) Load(ctx context.Context) (*SessionRecord, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var record SessionRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, fmt.Errorf("storage: failed to unmarshal record: %w", err)
	}
	return &record, nil
}

func (r *RedisStorageAdapter) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
