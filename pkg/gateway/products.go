package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/database"
)

const productColumns = `id, name, price, category, description, image_urls, stock_quantity, sizes, created_at, updated_at`

// Products is the product table gateway.
type Products struct {
	db *sql.DB
}

// NewProducts returns the product gateway over c.
func NewProducts(c *database.DBClient) *Products {
	return &Products{db: c.GetDB()}
}

func scanProduct(row scanner) (models.Product, error) {
	var (
		p        models.Product
		category string
		images   pq.StringArray
		sizes    []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &category, &p.Description, &images, &p.Stock, &sizes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Product{}, err
	}
	p.Category = models.Category(category)
	p.ImageURLs = []string(images)
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	if len(sizes) > 0 {
		if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
			return models.Product{}, fmt.Errorf("decoding sizes of product %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func encodeSizes(sizes []models.SizeOption) ([]byte, error) {
	if sizes == nil {
		sizes = []models.SizeOption{}
	}
	return json.Marshal(sizes)
}

// imageArray keeps the NOT NULL image_urls column satisfied for empty lists.
func imageArray(urls []string) interface{} {
	if urls == nil {
		urls = []string{}
	}
	return pq.Array(urls)
}

// ListProducts returns the products of the given categories in storage order.
func (g *Products) ListProducts(ctx context.Context, categories []models.Category) (products []models.Product, err error) {
	ctx, span := startSpan(ctx, "ListProducts", attribute.Int("categories", len(categories)))
	defer func() { endSpan(span, err) }()

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}

	rows, err := g.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE category = ANY($1) ORDER BY created_at ASC, id ASC`,
		pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("failed to query products from DB: %w", err)
	}
	defer rows.Close()

	products = []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Printf("Error scanning product row from DB: %v", err)
			continue
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration from DB: %w", err)
	}

	log.Printf("Successfully retrieved %d products from PostgreSQL database.", len(products))
	return products, nil
}

// InsertProduct stores a new product under a fresh id.
func (g *Products) InsertProduct(ctx context.Context, d models.ProductDraft) (p models.Product, err error) {
	ctx, span := startSpan(ctx, "InsertProduct")
	defer func() { endSpan(span, err) }()

	sizes, err := encodeSizes(d.Sizes)
	if err != nil {
		return models.Product{}, err
	}

	p = d.WithID(uuid.New().String())
	err = g.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, price, category, description, image_urls, stock_quantity, sizes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Price, string(p.Category), p.Description, imageArray(p.ImageURLs), p.Stock, sizes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return models.Product{}, fmt.Errorf("product named %q: %w", d.Name, models.ErrConflict)
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

// UpdateProduct replaces every editable field of p.
func (g *Products) UpdateProduct(ctx context.Context, p models.Product) (err error) {
	ctx, span := startSpan(ctx, "UpdateProduct", attribute.String("product.id", p.ID))
	defer func() { endSpan(span, err) }()

	sizes, err := encodeSizes(p.Sizes)
	if err != nil {
		return err
	}

	res, err := g.db.ExecContext(ctx, `
		UPDATE products SET
			name = $2, price = $3, category = $4, description = $5,
			image_urls = $6, stock_quantity = $7, sizes = $8, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Price, string(p.Category), p.Description, imageArray(p.ImageURLs), p.Stock, sizes)
	switch {
	case isBadIdentifier(err):
		return fmt.Errorf("product %s: %w", p.ID, models.ErrNotFound)
	case database.IsUniqueViolation(err):
		return fmt.Errorf("product named %q: %w", p.Name, models.ErrConflict)
	case err != nil:
		return fmt.Errorf("failed to update product %s: %w", p.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", p.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("product %s: %w", p.ID, models.ErrNotFound)
	}
	return nil
}

// DeleteProduct removes the product with id.
func (g *Products) DeleteProduct(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, "DeleteProduct", attribute.String("product.id", id))
	defer func() { endSpan(span, err) }()

	res, err := g.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if isBadIdentifier(err) {
		return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// ImportRow is one product of a bulk import. ID may be empty.
type ImportRow struct {
	ID    string
	Draft models.ProductDraft
}

// ImportProducts upserts rows by product name inside one transaction. A row
// that fails is rolled back to its savepoint and skipped; the stored products
// are returned in row order.
func (g *Products) ImportProducts(ctx context.Context, rows []ImportRow) (stored []models.Product, err error) {
	ctx, span := startSpan(ctx, "ImportProducts", attribute.Int("rows", len(rows)))
	defer func() { endSpan(span, err) }()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback on error by default

	for i, r := range rows {
		productID := r.ID
		if productID == "" {
			productID = uuid.New().String()
		}
		sizes, err := encodeSizes(r.Draft.Sizes)
		if err != nil {
			log.Printf("Skipping product %s (row %d): %v", r.Draft.Name, i+1, err)
			continue
		}

		if _, err := tx.ExecContext(ctx, `SAVEPOINT import_row`); err != nil {
			return nil, fmt.Errorf("failed to create savepoint: %w", err)
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO products (id, name, price, category, description, image_urls, stock_quantity, sizes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (name) DO UPDATE SET
				price = EXCLUDED.price,
				category = EXCLUDED.category,
				description = EXCLUDED.description,
				image_urls = EXCLUDED.image_urls,
				stock_quantity = EXCLUDED.stock_quantity,
				sizes = EXCLUDED.sizes,
				updated_at = NOW()
			RETURNING `+productColumns,
			productID, r.Draft.Name, r.Draft.Price, string(r.Draft.Category), r.Draft.Description,
			imageArray(r.Draft.ImageURLs), r.Draft.Stock, sizes)

		p, err := scanProduct(row)
		if err != nil {
			log.Printf("Error processing product %s (row %d) for DB UPSERT: %v", r.Draft.Name, i+1, err)
			if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT import_row`); rbErr != nil {
				return nil, fmt.Errorf("failed to roll back row %d: %w", i+1, rbErr)
			}
			continue // Continue processing other rows even if one fails
		}
		stored = append(stored, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return stored, nil
}
