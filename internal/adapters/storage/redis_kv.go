package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

// RedisKV backs the credential store with Redis, namespaced per client
// session so one gateway can carry many sessions. Keys carry a TTL so
// abandoned sessions age out on their own.
type RedisKV struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ ports.KV = (*RedisKV)(nil)

func NewRedisKV(client *redis.Client, sessionID string, ttl time.Duration) *RedisKV {
	return &RedisKV{
		client: client,
		prefix: "sess:" + sessionID + ":",
		ttl:    ttl,
	}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

func (r *RedisKV) Del(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.prefix + k
	}
	return r.client.Del(ctx, prefixed...).Err()
}
