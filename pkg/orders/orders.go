// Package orders exposes order history, guest order tracking and the admin
// status workflow.
package orders

import (
	"context"
	"fmt"
	"strings"

	"gitlab.connectwisedev.com/storefront-service/models"
)

// Gateway is the order table.
type Gateway interface {
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	FindOrderForGuest(ctx context.Context, email, id string) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error
}

// Service wraps the gateway with input checks.
type Service struct {
	gw Gateway
}

// NewService returns a Service over gw.
func NewService(gw Gateway) *Service {
	return &Service{gw: gw}
}

// ForUser lists userID's orders, newest first.
func (s *Service) ForUser(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("order history: %w", models.ErrUnauthorized)
	}
	return s.gw.ListOrdersByUser(ctx, userID)
}

// TrackGuest finds one order by the email it was placed with and its number.
func (s *Service) TrackGuest(ctx context.Context, email, orderID string) (models.Order, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	orderID = strings.TrimSpace(orderID)
	if email == "" || orderID == "" {
		verr := models.NewValidationError()
		verr.Add("form", "Please enter both email and order number.")
		return models.Order{}, verr
	}
	return s.gw.FindOrderForGuest(ctx, email, orderID)
}

// All lists every order, newest first.
func (s *Service) All(ctx context.Context) ([]models.Order, error) {
	return s.gw.ListOrders(ctx)
}

// UpdateStatus moves order id to status and returns the updated order.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (models.Order, error) {
	st, err := models.ParseOrderStatus(status)
	if err != nil {
		verr := models.NewValidationError()
		verr.Add("status", "Unknown order status")
		return models.Order{}, verr
	}
	if err := s.gw.UpdateOrderStatus(ctx, id, st); err != nil {
		return models.Order{}, err
	}
	return s.gw.GetOrder(ctx, id)
}
