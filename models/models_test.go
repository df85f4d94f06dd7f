package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"men", CategoryMen, false},
		{" Kids ", CategoryKids, false},
		{"women", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCartLineIdentity(t *testing.T) {
	p := Product{ID: "3f2a-77", Name: "Tee", Price: 150, ImageURLs: []string{"a.png", "b.png"}}

	line := NewCartLine(p, "M", 2)
	assert.Equal(t, "3f2a-77-M", line.ID)
	assert.Equal(t, "3f2a-77", line.ProductID())
	assert.Equal(t, "a.png", line.Image)
	assert.Equal(t, 150.0, line.Price)

	plain := NewCartLine(p, "", 1)
	assert.Equal(t, "3f2a-77", plain.ID)
	assert.Equal(t, "3f2a-77", plain.ProductID())
	assert.NotEqual(t, line.Key(), plain.Key())
}

func TestProductStockAndSizes(t *testing.T) {
	p := Product{Stock: 0, Sizes: []SizeOption{{Size: "S", Available: true}, {Size: "XL", Available: false}}}
	assert.False(t, p.InStock())
	assert.True(t, p.SizeAvailable("S"))
	assert.False(t, p.SizeAvailable("XL"))
	assert.False(t, p.SizeAvailable("M"))

	p.Stock = 1
	assert.True(t, p.InStock())
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError()
	assert.NoError(t, ve.OrNil())

	ve.Add("price", "Price is required")
	ve.Add("price", "ignored")
	ve.Add("name", "Product name is required")

	err := ve.OrNil()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "validation failed: name: Product name is required; price: Price is required", err.Error())

	fields, ok := FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Price is required", fields["price"])
}

func TestOrderDescribe(t *testing.T) {
	o := Order{Items: []CartLine{{ID: "p1-M", Name: "Tee", Quantity: 2}, {ID: "p2", Quantity: 1}}}
	assert.Equal(t, "Tee (x2), Product p2 (x1)", o.Describe())
	assert.Equal(t, "No products", Order{}.Describe())
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("Shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, st)

	_, err = ParseOrderStatus("lost")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
