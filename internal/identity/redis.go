package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/models"
)

const profileKeyPrefix = "splitledger:profile:"

// RedisCache keeps profiles as JSON strings with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps client. Entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// ConnectRedis parses a redis:// URL and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func profileKey(id string) string {
	return profileKeyPrefix + id
}

// GetProfiles returns the cached profiles among ids. Misses and undecodable
// entries are left out of the result.
func (c *RedisCache) GetProfiles(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("mget profiles: %w", err)
	}

	profiles := make(map[string]models.Profile, len(ids))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var p models.Profile
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			continue
		}
		profiles[p.ID] = p
	}
	return profiles, nil
}

// SetProfiles stores profiles in one pipeline, each expiring after the cache TTL.
func (c *RedisCache) SetProfiles(ctx context.Context, profiles []models.Profile) error {
	pipe := c.client.Pipeline()
	for _, p := range profiles {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		pipe.Set(ctx, profileKey(p.ID), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set profiles: %w", err)
	}
	return nil
}

// Delete evicts the profile of id.
func (c *RedisCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, profileKey(id)).Err(); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
