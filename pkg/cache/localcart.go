package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.connectwisedev.com/storefront-service/models"
)

// DeviceCartTTL bounds how long an untouched device cart is kept.
const DeviceCartTTL = 30 * 24 * time.Hour

// LocalCartStore is the per-device cart storage: the server-side stand-in for
// the shopper's browser storage. Keys are namespaced by device id.
type LocalCartStore struct {
	client   *redis.Client
	deviceID string
}

// NewLocalCartStore scopes cart storage to one device.
func NewLocalCartStore(c *RedisClient, deviceID string) *LocalCartStore {
	return &LocalCartStore{client: c.GetClient(), deviceID: deviceID}
}

func (s *LocalCartStore) redisKey(key string) string {
	return "device:" + s.deviceID + ":" + key
}

// Read returns the lines stored under key; a missing key is an empty cart.
func (s *LocalCartStore) Read(ctx context.Context, key string) ([]models.CartLine, error) {
	raw, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err == redis.Nil {
		return []models.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local cart %s: %w", key, err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode local cart %s: %w", key, err)
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines, nil
}

// Write replaces the lines stored under key.
func (s *LocalCartStore) Write(ctx context.Context, key string, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode local cart %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.redisKey(key), raw, DeviceCartTTL).Err(); err != nil {
		return fmt.Errorf("failed to write local cart %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *LocalCartStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete local cart %s: %w", key, err)
	}
	return nil
}
