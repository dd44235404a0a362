package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamdesk/console/pkg/config"
)

// RedisSlot keeps the slot value under a single redis key. Useful when the
// console should survive host restarts or run against a shared redis.
type RedisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisClient returns a configured and pinged redis client.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// NewRedisSlot wraps an existing client.
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	return &RedisSlot{client: client, key: key}
}

// Get reads the slot key.
func (s *RedisSlot) Get(ctx context.Context) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return raw, nil
}

// Put replaces the slot key. The value never expires; the slot outlives
// sessions by design.
func (s *RedisSlot) Put(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
