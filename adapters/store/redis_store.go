package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/EdgeApp/infinite-ramp/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the Store interface
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.Store {
	return &RedisStore{
		client: client,
		prefix: "ramp:plugin:",
	}
}

// GetItem retrieves a value by plugin and key from Redis
func (s *RedisStore) GetItem(ctx context.Context, pluginID, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+pluginID+":"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get item: %w", err)
	}

	return value, nil
}

// SetItem stores a value under plugin and key in Redis. Plugin state is
// durable, so no expiration is set.
func (s *RedisStore) SetItem(ctx context.Context, pluginID, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+pluginID+":"+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set item: %w", err)
	}

	return nil
}

// DeleteItem removes a value by plugin and key from Redis
func (s *RedisStore) DeleteItem(ctx context.Context, pluginID, key string) error {
	if err := s.client.Del(ctx, s.prefix+pluginID+":"+key).Err(); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return nil
}
