// Package admin implements the inventory form of the admin dashboard.
package admin

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/catalog"
	"gitlab.connectwisedev.com/storefront-service/pkg/storage"
)

// Catalog is the part of the catalog store the form writes through.
type Catalog interface {
	ByID(id string) (models.Product, bool)
	Create(ctx context.Context, d models.ProductDraft) (models.Product, error)
	Update(ctx context.Context, p models.Product) error
}

// Upload is one image file attached to the form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProductForm is a submitted product form; ID is empty for a new product.
type ProductForm struct {
	ID    string
	Draft models.ProductDraft
}

// Products saves product forms.
type Products struct {
	catalog Catalog
	files   storage.FileStore
	now     func() time.Time
}

// NewProducts wires the form to the catalog and the image store.
func NewProducts(c Catalog, files storage.FileStore) *Products {
	return &Products{catalog: c, files: files, now: time.Now}
}

// Save validates form, uploads any new images (they replace the existing
// image list) and creates or updates the product.
func (p *Products) Save(ctx context.Context, form ProductForm, uploads []Upload) (models.Product, error) {
	var existing models.Product
	if form.ID != "" {
		var ok bool
		if existing, ok = p.catalog.ByID(form.ID); !ok {
			return models.Product{}, fmt.Errorf("product %s: %w", form.ID, models.ErrNotFound)
		}
		if len(form.Draft.ImageURLs) == 0 {
			form.Draft.ImageURLs = existing.ImageURLs
		}
	}

	check := form.Draft
	if len(uploads) > 0 {
		check.ImageURLs = make([]string, len(uploads))
	}
	d, err := catalog.ValidateDraft(check)
	if err != nil {
		return models.Product{}, err
	}

	d.ImageURLs = form.Draft.ImageURLs
	if len(uploads) > 0 {
		urls, err := p.upload(ctx, uploads)
		if err != nil {
			log.Printf("Error uploading product image: %v", err)
			verr := models.NewValidationError()
			verr.Add("image", "Failed to upload image")
			return models.Product{}, verr
		}
		d.ImageURLs = urls
	}

	if form.ID == "" {
		return p.catalog.Create(ctx, d)
	}

	if err := p.catalog.Update(ctx, d.WithID(form.ID)); err != nil {
		return models.Product{}, err
	}
	if updated, ok := p.catalog.ByID(form.ID); ok {
		return updated, nil
	}
	updated := d.WithID(form.ID)
	updated.CreatedAt = existing.CreatedAt
	return updated, nil
}

func (p *Products) upload(ctx context.Context, uploads []Upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key := storage.ObjectKey(u.Filename, p.now())
		url, err := p.files.Put(ctx, key, u.ContentType, u.Body)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
