package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps snapshots as plain Redis strings without expiry.
type RedisStore struct {
	client redisCommander
	logger *zap.Logger
}

// NewRedisStore constructs a Redis-backed store. *redis.Client satisfies the
// client parameter.
func NewRedisStore(client redisCommander, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, logger: logger}
}

// Get fetches the raw value for key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, keyNotFound(key)
		}
		return nil, storageFailure(err, "redis get %s", key)
	}
	return raw, nil
}

// Put stores value under key, replacing any previous value.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return storageFailure(err, "redis set %s", key)
	}
	s.logger.Debug("redis snapshot stored", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}
