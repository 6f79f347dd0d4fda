package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisStore implements the Store interface against a Redis instance.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Config is the required properties to use the redis session store.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisStore constructs a redis backed session store and verifies
// connectivity.
func NewRedisStore(ctx context.Context, cfg Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// ActiveWorkgroup returns the workgroup stored for the session.
func (s *RedisStore) ActiveWorkgroup(ctx context.Context, sessionID string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrNoValue
		}
		return uuid.Nil, fmt.Errorf("redis get: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse stored workgroup: %w", err)
	}

	return id, nil
}

// SetActiveWorkgroup stores the workgroup for the session, refreshing the
// session TTL.
func (s *RedisStore) SetActiveWorkgroup(ctx context.Context, sessionID string, workgroupID uuid.UUID) error {
	if err := s.client.Set(ctx, sessionKey(sessionID), workgroupID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID + ":workgroup"
}
