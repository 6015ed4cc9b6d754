package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/snapfeed/snapfeed/pkg/config"
	"github.com/snapfeed/snapfeed/pkg/logging"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis so they survive restarts and can
// be shared by multiple server processes
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed session store. Returns (nil, nil)
// when Redis is not configured; callers fall back to the in-memory
// store.
func NewRedis(cfg *config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis disabled, using in-memory sessions")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Create mints a session token for logname
func (s *RedisStore) Create(ctx context.Context, logname string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+token, logname, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Logname returns the identity bound to token, "" if absent
func (s *RedisStore) Logname(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	val, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Destroy discards the session
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, keyPrefix+token).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Health checks Redis health
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
