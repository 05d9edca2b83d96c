package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// credentialKey is the single well-known key the portal's credential lives
// under. Cleared on logout or role mismatch.
const credentialKey = "patient_portal:credential"

// RedisStorage keeps the credential in redis so that several portal
// replicas share one persisted session.
type RedisStorage struct {
	redis *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	if client == nil {
		panic("session: redis client required")
	}
	return &RedisStorage{redis: client}
}

func (s *RedisStorage) Load(ctx context.Context) (string, error) {
	token, err := s.redis.Get(ctx, credentialKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: load credential from redis: %w", err)
	}
	return token, nil
}

func (s *RedisStorage) Save(ctx context.Context, token string) error {
	if err := s.redis.Set(ctx, credentialKey, token, 0).Err(); err != nil {
		return fmt.Errorf("session: save credential to redis: %w", err)
	}
	return nil
}

func (s *RedisStorage) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, credentialKey).Err(); err != nil {
		return fmt.Errorf("session: clear credential from redis: %w", err)
	}
	return nil
}
