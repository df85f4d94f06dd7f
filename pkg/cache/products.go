package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.connectwisedev.com/storefront-service/models"
)

const (
	// productIDsKey holds product ids in storage order.
	productIDsKey    = "all_product_ids"
	productKeyPrefix = "product:"
	// productsGenKey is bumped by every Invalidate.
	productsGenKey = "products_gen"
)

var (
	// ErrCacheMiss is returned when the cached product list is absent or unusable.
	ErrCacheMiss = errors.New("product cache miss")
	// ErrStaleRefill is returned by Populate when the cache was invalidated
	// after the products were read.
	ErrStaleRefill = errors.New("product cache invalidated since read")
)

// ProductCache keeps the full product list in Redis: one JSON value per
// product plus an ordered id list.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache returns a cache whose entries expire after ttl (0 = never).
func NewProductCache(c *RedisClient, ttl time.Duration) *ProductCache {
	return &ProductCache{client: c.GetClient(), ttl: ttl}
}

func productKey(id string) string {
	return productKeyPrefix + id
}

// Get returns every cached product in storage order, or ErrCacheMiss.
func (c *ProductCache) Get(ctx context.Context) ([]models.Product, error) {
	productIDs, err := c.client.LRange(ctx, productIDsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from Redis: %w", productIDsKey, err)
	}
	if len(productIDs) == 0 {
		return nil, ErrCacheMiss
	}

	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = productKey(id)
	}

	results, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to MGET products from Redis: %w", err)
	}

	products := make([]models.Product, 0, len(results))
	for _, res := range results {
		if res == nil {
			// An evicted entry makes the list incomplete; let the caller reload.
			log.Println("Found nil result for a product key in Redis, likely evicted/expired.")
			return nil, ErrCacheMiss
		}
		productJSON, ok := res.(string)
		if !ok {
			log.Printf("Unexpected type from Redis MGET: %T", res)
			return nil, ErrCacheMiss
		}
		var p models.Product
		if err := json.Unmarshal([]byte(productJSON), &p); err != nil {
			log.Printf("Failed to unmarshal product JSON from Redis: %v", err)
			return nil, ErrCacheMiss
		}
		products = append(products, p)
	}

	log.Printf("Successfully retrieved %d products from Redis cache.", len(products))
	return products, nil
}

// Generation returns the invalidation counter. Read it before loading the
// products that will be handed to Populate.
func (c *ProductCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, productsGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get %s from Redis: %w", productsGenKey, err)
	}
	return gen, nil
}

// Populate replaces the cached list with products, which must have been read
// while the cache was at generation gen. ErrStaleRefill means an Invalidate
// happened in between and nothing was written.
func (c *ProductCache) Populate(ctx context.Context, gen int64, products []models.Product) error {
	values := make(map[string][]byte, len(products))
	ids := make([]interface{}, 0, len(products))
	for _, p := range products {
		productJSON, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal product %s for cache population: %w", p.ID, err)
		}
		values[p.ID] = productJSON
		ids = append(ids, p.ID)
	}

	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, productsGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to get %s from Redis: %w", productsGenKey, err)
		}
		if current != gen {
			return ErrStaleRefill
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for id, v := range values {
				pipe.Set(ctx, productKey(id), v, c.ttl)
			}
			pipe.Del(ctx, productIDsKey)
			if len(ids) > 0 {
				pipe.RPush(ctx, productIDsKey, ids...)
				if c.ttl > 0 {
					pipe.Expire(ctx, productIDsKey, c.ttl)
				}
			}
			return nil
		})
		return err
	}, productsGenKey)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		return ErrStaleRefill
	case errors.Is(err, ErrStaleRefill):
		return err
	case err != nil:
		return fmt.Errorf("failed to execute Redis transaction for cache population: %w", err)
	}
	log.Printf("Cache populated with %d products.", len(products))
	return nil
}

// Invalidate bumps the generation and drops the id list together with the
// product values it points at.
func (c *ProductCache) Invalidate(ctx context.Context) error {
	productIDs, err := c.client.LRange(ctx, productIDsKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get %s from Redis: %w", productIDsKey, err)
	}

	keys := make([]string, 0, len(productIDs)+1)
	keys = append(keys, productIDsKey)
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}

	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, productsGenKey)
	pipe.Del(ctx, keys...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	return nil
}
