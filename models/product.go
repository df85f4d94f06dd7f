package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is the storefront section a product is listed under.
type Category string

const (
	CategoryMen  Category = "men"
	CategoryKids Category = "kids"
)

// Categories lists every recognised category in display order.
var Categories = []Category{CategoryMen, CategoryKids}

// ParseCategory maps a raw value onto a recognised category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q: %w", s, ErrInvalidInput)
}

// SizeOption is one selectable size and whether it can currently be ordered.
type SizeOption struct {
	Size      string `json:"size"`
	Available bool   `json:"available"`
}

// DefaultSizes is used when an admin saves a product without a size list.
func DefaultSizes() []SizeOption {
	return []SizeOption{
		{Size: "S", Available: true},
		{Size: "M", Available: true},
		{Size: "L", Available: true},
		{Size: "XL", Available: true},
	}
}

// Product represents a product in the database and cache
type Product struct {
	ID          string       `json:"id"` // UUID as string
	Name        string       `json:"name"`
	Price       float64      `json:"price"`
	Category    Category     `json:"category"`
	Description string       `json:"description"`
	ImageURLs   []string     `json:"image_urls"`
	Stock       int          `json:"stock_quantity"`
	Sizes       []SizeOption `json:"sizes"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// InStock reports whether any units are left.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// SizeAvailable reports whether size can be selected for this product.
func (p Product) SizeAvailable(size string) bool {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Available
		}
	}
	return false
}

// PrimaryImage returns the first image reference, or "" when there is none.
func (p Product) PrimaryImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

// ProductDraft is the admin-editable part of a product, used for create and
// full-replace updates.
type ProductDraft struct {
	Name        string       `json:"name"`
	Price       float64      `json:"price"`
	Category    Category     `json:"category"`
	Description string       `json:"description"`
	ImageURLs   []string     `json:"image_urls"`
	Stock       int          `json:"stock_quantity"`
	Sizes       []SizeOption `json:"sizes"`
}

// WithID builds the full product record for id from the draft.
func (d ProductDraft) WithID(id string) Product {
	return Product{
		ID:          id,
		Name:        d.Name,
		Price:       d.Price,
		Category:    d.Category,
		Description: d.Description,
		ImageURLs:   d.ImageURLs,
		Stock:       d.Stock,
		Sizes:       d.Sizes,
	}
}

// ProductCSV represents a product as read from a bulk import CSV file
type ProductCSV struct {
	ID          string  `csv:"id"` // Optional: if CSV has ID, else generate
	Name        string  `csv:"name"`
	Category    string  `csv:"category"`
	Price       float64 `csv:"price"`
	Stock       int     `csv:"stock"`
	Description string  `csv:"description"`
	Images      string  `csv:"images"` // "|" separated
	Sizes       string  `csv:"sizes"`  // "|" separated, all available
}
