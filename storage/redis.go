package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces token keys in a shared Redis.
const DefaultRedisPrefix = "gosession:"

// Redis keeps the token in a Redis string at prefix+key. Tokens carry no TTL
// here; expiry is decided by the identity service at bootstrap.
type Redis struct {
	client redis.UniversalClient
	prefix string
	key    string
}

// NewRedis returns a [Redis] store. An empty prefix uses [DefaultRedisPrefix].
func NewRedis(client redis.UniversalClient, prefix, key string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, key: key}
}

func (r *Redis) redisKey() string {
	return r.prefix + r.key
}

func (r *Redis) Load(ctx context.Context) (string, bool, error) {
	tok, err := r.client.Get(ctx, r.redisKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return tok, true, nil
}

func (r *Redis) Save(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.redisKey(), token, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.redisKey()).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
