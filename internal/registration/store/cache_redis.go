package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vaxreg/internal/registration/models"
	"vaxreg/pkg/domain"
)

const redisKeyPrefix = "vaxreg:registration:"

// RedisCache caches registrations as JSON with TTL eviction. Shared across instances.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache accepts any go-redis client (single node, cluster, or ring).
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, id domain.CitizenID) (*models.Registration, error) {
	data, err := c.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration cache: %w", err)
	}
	var reg models.Registration
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registration cache: %w", err)
	}
	return reg.Clone(), nil
}

func (c *RedisCache) Set(ctx context.Context, reg *models.Registration) error {
	payload, err := json.Marshal(reg.Clone())
	if err != nil {
		return fmt.Errorf("encode registration cache: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(reg.CitizenID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set registration cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, id domain.CitizenID) error {
	if err := c.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("delete registration cache: %w", err)
	}
	return nil
}

func redisKey(id domain.CitizenID) string {
	return redisKeyPrefix + id.String()
}
