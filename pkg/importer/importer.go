// Package importer bulk-loads products from a CSV file.
//
// Expected columns, after a header row:
//
//	id,name,category,price,stock,description,images,sizes
//
// images and sizes are "|" separated. Every listed size is available.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/gateway"
)

const minColumns = 5

// ErrEmpty is returned for a file with no data rows.
var ErrEmpty = errors.New("CSV is empty or has only headers")

// Writer stores parsed rows.
type Writer interface {
	ImportProducts(ctx context.Context, rows []gateway.ImportRow) ([]models.Product, error)
}

// Result summarises one import.
type Result struct {
	Rows     int `json:"rows"`
	Skipped  int `json:"skipped"`
	Imported int `json:"imported"`
}

// Parse reads a product CSV. Rows that cannot be used are logged and
// skipped; the second return value counts them.
func Parse(r io.Reader) ([]gateway.ImportRow, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, 0, ErrEmpty
	}

	rows := make([]gateway.ImportRow, 0, len(records)-1)
	skipped := 0
	for i, rec := range records[1:] {
		line := i + 2
		row, err := parseRow(rec)
		if err != nil {
			log.Printf("Skipping row %d: %v", line, err)
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func parseRow(rec []string) (gateway.ImportRow, error) {
	if len(rec) < minColumns {
		return gateway.ImportRow{}, fmt.Errorf("insufficient columns: %v", rec)
	}
	col := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	p := models.ProductCSV{
		ID:          col(0),
		Name:        col(1),
		Category:    col(2),
		Description: col(5),
		Images:      col(6),
		Sizes:       col(7),
	}
	if p.Name == "" {
		return gateway.ImportRow{}, errors.New("missing name")
	}

	var err error
	if p.Price, err = strconv.ParseFloat(col(3), 64); err != nil || p.Price < 0 {
		return gateway.ImportRow{}, fmt.Errorf("invalid price '%s'", col(3))
	}
	if p.Stock, err = strconv.Atoi(col(4)); err != nil || p.Stock < 0 {
		return gateway.ImportRow{}, fmt.Errorf("invalid stock '%s'", col(4))
	}
	cat, err := models.ParseCategory(p.Category)
	if err != nil {
		return gateway.ImportRow{}, err
	}

	return gateway.ImportRow{
		ID: p.ID,
		Draft: models.ProductDraft{
			Name:        p.Name,
			Price:       p.Price,
			Category:    cat,
			Description: p.Description,
			ImageURLs:   splitList(p.Images),
			Stock:       p.Stock,
			Sizes:       sizes(p.Sizes),
		},
	}, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sizes(s string) []models.SizeOption {
	list := splitList(s)
	if len(list) == 0 {
		return models.DefaultSizes()
	}
	out := make([]models.SizeOption, len(list))
	for i, size := range list {
		out[i] = models.SizeOption{Size: strings.ToUpper(size), Available: true}
	}
	return out
}

// Import parses content and hands the usable rows to w.
func Import(ctx context.Context, w Writer, content []byte) (Result, error) {
	rows, skipped, err := Parse(bytes.NewReader(content))
	if err != nil {
		return Result{}, err
	}
	res := Result{Rows: len(rows) + skipped, Skipped: skipped}
	if len(rows) == 0 {
		return res, nil
	}

	stored, err := w.ImportProducts(ctx, rows)
	if err != nil {
		return res, err
	}
	res.Imported = len(stored)
	res.Skipped += len(rows) - len(stored)
	log.Printf("Imported %d of %d product rows", res.Imported, res.Rows)
	return res, nil
}
