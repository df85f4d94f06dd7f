package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus tracks an order through fulfilment.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range orderStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q: %w", s, ErrInvalidInput)
}

// Order is a server-owned record; the storefront reads it and moves its status.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id,omitempty"`
	UserEmail string      `json:"user_email"`
	Items     []CartLine  `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	Address   string      `json:"address,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Describe renders the item list the way the tracking page shows it.
func (o Order) Describe() string {
	if len(o.Items) == 0 {
		return "No products"
	}
	parts := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		name := it.Name
		if name == "" {
			name = "Product " + it.ID
		}
		parts = append(parts, fmt.Sprintf("%s (x%d)", name, it.Quantity))
	}
	return strings.Join(parts, ", ")
}
