package cart

import (
	"github.com/shopspring/decimal"

	"gitlab.connectwisedev.com/storefront-service/models"
)

// Summary is the order-summary box shown next to the cart.
type Summary struct {
	Items        int             `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Threshold    decimal.Decimal `json:"free_shipping_threshold"`
	Remaining    decimal.Decimal `json:"remaining"`
	FreeShipping bool            `json:"free_shipping"`
}

// Summarize totals lines against the free-shipping threshold.
func Summarize(lines []models.CartLine, threshold float64) Summary {
	sum := Summary{
		Subtotal:  decimal.Zero,
		Threshold: decimal.NewFromFloat(threshold),
	}
	for _, l := range lines {
		sum.Items += l.Quantity
		sum.Subtotal = sum.Subtotal.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	sum.FreeShipping = sum.Subtotal.GreaterThanOrEqual(sum.Threshold)
	sum.Remaining = decimal.Zero
	if !sum.FreeShipping {
		sum.Remaining = sum.Threshold.Sub(sum.Subtotal)
	}
	return sum
}
