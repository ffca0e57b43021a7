package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"supportbot/internal/config"
	"supportbot/internal/domain"
	"supportbot/internal/session"
)

const keyPrefix = "supportbot:session:"

// Store keeps conversation contexts in Redis as JSON with a sliding TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient creates a Redis client for the session store.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// NewStore wraps client. ttl <= 0 keeps sessions forever.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl < 0 {
		ttl = 0
	}
	return &Store{client: client, ttl: ttl}
}

// Ping tests the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Load returns the stored context, or an empty one for an unknown session.
func (s *Store) Load(ctx context.Context, id string) (domain.ConversationContext, error) {
	var c domain.ConversationContext
	if id == "" {
		return c, session.ErrEmptySessionID
	}
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("load session: %w", err)
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.ConversationContext{}, fmt.Errorf("decode session: %w", err)
	}
	return c, nil
}

func (s *Store) Save(ctx context.Context, id string, c domain.ConversationContext) error {
	if id == "" {
		return session.ErrEmptySessionID
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, id string) error {
	if id == "" {
		return session.ErrEmptySessionID
	}
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
