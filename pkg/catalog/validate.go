package catalog

import (
	"strings"

	"gitlab.connectwisedev.com/storefront-service/models"
)

// ValidateDraft checks an admin product form and fills in defaults. The
// returned error is a *models.ValidationError keyed by form field.
func ValidateDraft(d models.ProductDraft) (models.ProductDraft, error) {
	verr := models.NewValidationError()

	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		verr.Add("name", "Product name is required")
	}
	if d.Price <= 0 {
		verr.Add("price", "Valid price is required")
	}
	if len(d.ImageURLs) == 0 {
		verr.Add("image", "Product image is required")
	}
	if d.Stock < 0 {
		verr.Add("stock_quantity", "Stock quantity cannot be negative")
	}

	if cat, err := models.ParseCategory(string(d.Category)); err != nil {
		verr.Add("category", "Category must be men or kids")
	} else {
		d.Category = cat
	}

	if len(d.Sizes) == 0 {
		d.Sizes = models.DefaultSizes()
	}
	return d, verr.OrNil()
}
