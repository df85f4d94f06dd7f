// Package catalog keeps the storefront's product list in memory and
// resynchronises it with the product gateway after every admin write.
package catalog

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"gitlab.connectwisedev.com/storefront-service/models"
)

// Gateway is the remote product table the store is sourced from.
type Gateway interface {
	ListProducts(ctx context.Context, categories []models.Category) ([]models.Product, error)
	InsertProduct(ctx context.Context, d models.ProductDraft) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// Refresher is implemented by gateways that sit behind a cache and can read
// straight from the source of truth. The store uses it after its own writes.
type Refresher interface {
	RefreshProducts(ctx context.Context, categories []models.Category) ([]models.Product, error)
}

// Store is the in-memory product catalog. Safe for concurrent use.
type Store struct {
	gw Gateway

	mu       sync.RWMutex
	products []models.Product
	byID     map[string]int
}

// NewStore returns an empty store; call Load to fill it.
func NewStore(gw Gateway) *Store {
	return &Store{gw: gw, byID: map[string]int{}}
}

// Load replaces the in-memory set with every product of a recognised
// category. On failure the previous set is kept and the error returned.
func (s *Store) Load(ctx context.Context) error {
	return s.load(ctx, s.gw.ListProducts)
}

func (s *Store) load(ctx context.Context, list func(context.Context, []models.Category) ([]models.Product, error)) error {
	products, err := list(ctx, models.Categories)
	if err != nil {
		log.Printf("Error loading products, keeping %d cached: %v", s.Len(), err)
		return fmt.Errorf("failed to load products: %w", err)
	}

	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}

	s.mu.Lock()
	s.products = products
	s.byID = index
	s.mu.Unlock()
	return nil
}

// reload resynchronises after a write; a failure only leaves the store stale.
func (s *Store) reload(ctx context.Context) {
	list := s.gw.ListProducts
	if r, ok := s.gw.(Refresher); ok {
		list = r.RefreshProducts
	}
	if err := s.load(ctx, list); err != nil {
		log.Printf("Catalog refresh after write failed: %v", err)
	}
}

// Poll reloads the store every interval until ctx is done, picking up
// products written by other processes such as the bulk importer.
func (s *Store) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Load(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Periodic catalog reload failed: %v", err)
			}
		}
	}
}

// Len is the number of loaded products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Products returns a snapshot of every product in load order.
func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// ByCategory returns the products in cat, in load order.
func (s *Store) ByCategory(cat models.Category) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Product{}
	for _, p := range s.products {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}

// ByID looks a product up by id.
func (s *Store) ByID(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return s.products[i], true
}

// Create inserts d and returns the product as seen after the refresh.
func (s *Store) Create(ctx context.Context, d models.ProductDraft) (models.Product, error) {
	created, err := s.gw.InsertProduct(ctx, d)
	if err != nil {
		return models.Product{}, err
	}
	s.reload(ctx)

	if p, ok := s.ByID(created.ID); ok {
		return p, nil
	}
	return created, nil
}

// Update fully replaces p.
func (s *Store) Update(ctx context.Context, p models.Product) error {
	if err := s.gw.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

// Delete removes the product with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.gw.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

// Search matches query against name and description, ignoring case.
// An empty query matches nothing.
func (s *Store) Search(query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Product{}
	if q == "" {
		return out
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

// Suggestions picks up to n random products whose id is not in exclude.
// Cart line ids are accepted too; the size suffix is ignored.
func (s *Store) Suggestions(exclude []models.CartLine, n int) []models.Product {
	skip := make(map[string]bool, len(exclude))
	for _, l := range exclude {
		skip[l.ProductID()] = true
	}

	s.mu.RLock()
	pool := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if !skip[p.ID] {
			pool = append(pool, p)
		}
	}
	s.mu.RUnlock()

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n < 0 {
		n = 0
	}
	if n < len(pool) {
		pool = pool[:n]
	}
	return pool
}
