package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces view state documents in a shared Redis instance.
const redisKeyPrefix = "bgpmap:view:"

// RedisStore persists view state in Redis, for serve deployments where
// several instances share one backing store.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, key string) (ViewState, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ViewState{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return ViewState{}, err
	}

	v := New()
	if err := json.Unmarshal(data, &v); err != nil {
		return ViewState{}, fmt.Errorf("decode state for %s: %w", key, err)
	}
	return v, nil
}

// Save implements Store. Documents do not expire: view state is durable
// user data, not a cache.
func (s *RedisStore) Save(ctx context.Context, key string, v ViewState) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+key, data, 0).Err()
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

// Close implements Store.
func (s *RedisStore) Close() error { return s.client.Close() }
