package cache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/zura-health/orflow/backend/internal/domain/providers"
	"github.com/zura-health/orflow/backend/internal/infrastructure/clients/redis"
)

// RedisAdapter implements the CacheProvider interface using Redis
type RedisAdapter struct {
	client *redis.Client
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redis.Client) providers.CacheProvider {
	return &RedisAdapter{client: client}
}

// Get retrieves a value from the cache. A missing key returns nil, nil.
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := a.client.Client().Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores a value in the cache with an expiration in seconds
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	expiration := time.Duration(expirationSeconds) * time.Second
	return a.client.Client().Set(ctx, key, value, expiration).Err()
}

// Delete removes a value from the cache
func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	return a.client.Client().Del(ctx, key).Err()
}

// Exists checks whether a key is present in the cache
func (a *RedisAdapter) Exists(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
