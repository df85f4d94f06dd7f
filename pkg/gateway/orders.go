package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/database"
)

const orderColumns = `id, user_id, user_email, items, total, status, address, phone, created_at`

// Orders reads orders and moves their status.
type Orders struct {
	db *sql.DB
}

// NewOrders returns the order gateway over c.
func NewOrders(c *database.DBClient) *Orders {
	return &Orders{db: c.GetDB()}
}

func scanOrder(row scanner) (models.Order, error) {
	var (
		o      models.Order
		userID sql.NullString
		items  []byte
		status string
	)
	if err := row.Scan(&o.ID, &userID, &o.UserEmail, &items, &o.Total, &status, &o.Address, &o.Phone, &o.CreatedAt); err != nil {
		return models.Order{}, err
	}
	o.UserID = userID.String
	o.Status = models.OrderStatus(status)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return models.Order{}, fmt.Errorf("decoding items of order %s: %w", o.ID, err)
		}
	}
	return o, nil
}

func (g *Orders) queryOrders(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during order iteration: %w", err)
	}
	return orders, nil
}

// ListOrdersByUser returns the orders of userID, newest first.
func (g *Orders) ListOrdersByUser(ctx context.Context, userID string) (orders []models.Order, err error) {
	ctx, span := startSpan(ctx, "ListOrdersByUser", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	return g.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListOrders returns every order, newest first.
func (g *Orders) ListOrders(ctx context.Context) (orders []models.Order, err error) {
	ctx, span := startSpan(ctx, "ListOrders")
	defer func() { endSpan(span, err) }()

	return g.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// GetOrder returns the order with id.
func (g *Orders) GetOrder(ctx context.Context, id string) (o models.Order, err error) {
	ctx, span := startSpan(ctx, "GetOrder", attribute.String("order.id", id))
	defer func() { endSpan(span, err) }()

	o, err = scanOrder(g.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	return o, nil
}

// FindOrderForGuest returns order id only when it was placed with email.
func (g *Orders) FindOrderForGuest(ctx context.Context, email, id string) (o models.Order, err error) {
	ctx, span := startSpan(ctx, "FindOrderForGuest", attribute.String("order.id", id))
	defer func() { endSpan(span, err) }()

	o, err = scanOrder(g.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE lower(user_email) = $1 AND id = $2`, email, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to look up order %s: %w", id, err)
	}
	return o, nil
}

// UpdateOrderStatus moves order id to status.
func (g *Orders) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (err error) {
	ctx, span := startSpan(ctx, "UpdateOrderStatus", attribute.String("order.id", id), attribute.String("order.status", string(status)))
	defer func() { endSpan(span, err) }()

	res, err := g.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	return nil
}
