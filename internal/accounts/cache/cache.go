package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"finbank/internal/accounts/models"
)

const accountKeyPrefix = "acct:num:"

// RedisCache is a read-through cache for account lookups. Entries are
// invalidated on every mutation, so a hit is at most ttl stale only when
// an invalidation was lost; the store remains the source of truth.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached account, or (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, number string) (*models.Account, error) {
	raw, err := c.client.Get(ctx, accountKeyPrefix+number).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var account models.Account
	if err := json.Unmarshal(raw, &account); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, nil
	}
	return &account, nil
}

func (c *RedisCache) Set(ctx context.Context, account *models.Account) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, accountKeyPrefix+account.Number, raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, number string) error {
	return c.client.Del(ctx, accountKeyPrefix+number).Err()
}
