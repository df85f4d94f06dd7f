package gateway

import (
	"context"
	"errors"
	"log"
	"sync"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/cache"
)

// CachedProducts puts the Redis product cache in front of the product table.
// Reads are served from Redis and fall back to Postgres; every write drops
// the cached list.
type CachedProducts struct {
	db    *Products
	cache *cache.ProductCache

	wg sync.WaitGroup // background cache refills
}

// NewCachedProducts wraps db with c.
func NewCachedProducts(db *Products, c *cache.ProductCache) *CachedProducts {
	return &CachedProducts{db: db, cache: c}
}

// ListProducts returns the products of the given categories in storage order.
func (g *CachedProducts) ListProducts(ctx context.Context, categories []models.Category) ([]models.Product, error) {
	products, err := g.cache.Get(ctx)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("Error fetching from Redis (%v), falling back to DB.", err)
		}
		return g.RefreshProducts(ctx, categories)
	}
	return filterCategories(products, categories), nil
}

// RefreshProducts reads the products of the given categories from Postgres,
// bypassing Redis, and refills the cache in the background. The refill is
// dropped when a write invalidates the cache in the meantime.
func (g *CachedProducts) RefreshProducts(ctx context.Context, categories []models.Category) ([]models.Product, error) {
	gen, genErr := g.cache.Generation(ctx)
	if genErr != nil {
		log.Printf("Skipping cache refill: %v", genErr)
	}

	products, err := g.db.ListProducts(ctx, models.Categories)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		// Refill the cache without holding up the caller.
		snapshot := append([]models.Product(nil), products...)
		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			err := g.cache.Populate(context.Background(), gen, snapshot)
			switch {
			case errors.Is(err, cache.ErrStaleRefill):
				log.Println("Product cache changed during DB fetch, skipping refill.")
			case err != nil:
				log.Printf("Failed to populate cache after DB fetch: %v", err)
			}
		}()
	}
	return filterCategories(products, categories), nil
}

// InsertProduct stores d and invalidates the cache.
func (g *CachedProducts) InsertProduct(ctx context.Context, d models.ProductDraft) (models.Product, error) {
	p, err := g.db.InsertProduct(ctx, d)
	if err != nil {
		return models.Product{}, err
	}
	g.invalidate(ctx)
	return p, nil
}

// UpdateProduct replaces p and invalidates the cache.
func (g *CachedProducts) UpdateProduct(ctx context.Context, p models.Product) error {
	if err := g.db.UpdateProduct(ctx, p); err != nil {
		return err
	}
	g.invalidate(ctx)
	return nil
}

// DeleteProduct removes id and invalidates the cache.
func (g *CachedProducts) DeleteProduct(ctx context.Context, id string) error {
	if err := g.db.DeleteProduct(ctx, id); err != nil {
		return err
	}
	g.invalidate(ctx)
	return nil
}

// ImportProducts upserts rows and invalidates the cache.
func (g *CachedProducts) ImportProducts(ctx context.Context, rows []ImportRow) ([]models.Product, error) {
	stored, err := g.db.ImportProducts(ctx, rows)
	if err != nil {
		return nil, err
	}
	g.invalidate(ctx)
	return stored, nil
}

// Wait blocks until background cache refills have finished.
func (g *CachedProducts) Wait() {
	g.wg.Wait()
}

func (g *CachedProducts) invalidate(ctx context.Context) {
	// A stale cache expires on its own TTL.
	if err := g.cache.Invalidate(ctx); err != nil {
		log.Printf("Error invalidating product cache: %v", err)
	}
}

func filterCategories(products []models.Product, categories []models.Category) []models.Product {
	want := make(map[models.Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if want[p.Category] {
			out = append(out, p)
		}
	}
	return out
}
