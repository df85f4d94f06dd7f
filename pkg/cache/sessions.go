package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.connectwisedev.com/storefront-service/models"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps login sessions in Redis with a TTL.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore returns a Redis-backed session store.
func NewSessionStore(c *RedisClient) *SessionStore {
	return &SessionStore{client: c.GetClient()}
}

// Save stores s until its ExpiresAt.
func (s *SessionStore) Save(ctx context.Context, sess models.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired: %w", models.ErrInvalidInput)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.Token, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get loads the session for token; unknown or expired tokens are ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, token string) (models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return models.Session{}, fmt.Errorf("session: %w", models.ErrNotFound)
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return sess, nil
}

// Delete revokes token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
