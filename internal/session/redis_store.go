package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL mirrors the storefront's two-week session cookie age.
const DefaultTTL = 14 * 24 * time.Hour

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	k := storeKey(sessionID, key)

	data, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	// Sliding expiry window: every read pushes expiry out again.
	if err := s.client.Expire(ctx, k, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("redis expire failed: %w", err)
	}

	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, key string, value []byte) error {
	k := storeKey(sessionID, key)
	if err := s.client.Set(ctx, k, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	k := storeKey(sessionID, key)
	if err := s.client.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func storeKey(sessionID, key string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, key)
}
