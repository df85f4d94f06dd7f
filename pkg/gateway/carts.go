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

// Carts stores one cart per authenticated user.
type Carts struct {
	db *sql.DB
}

// NewCarts returns the cart gateway over c.
func NewCarts(c *database.DBClient) *Carts {
	return &Carts{db: c.GetDB()}
}

// GetCart returns the remote cart of userID. A user without a stored cart
// has an empty one.
func (g *Carts) GetCart(ctx context.Context, userID string) (lines []models.CartLine, err error) {
	ctx, span := startSpan(ctx, "GetCart", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	var raw []byte
	err = g.db.QueryRowContext(ctx, `SELECT items FROM carts WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart of %s: %w", userID, err)
	}

	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart of %s: %w", userID, err)
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines, nil
}

// UpsertCart replaces the remote cart of userID with lines.
func (g *Carts) UpsertCart(ctx context.Context, userID string, lines []models.CartLine) (err error) {
	ctx, span := startSpan(ctx, "UpsertCart", attribute.String("user.id", userID), attribute.Int("lines", len(lines)))
	defer func() { endSpan(span, err) }()

	if lines == nil {
		lines = []models.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart of %s: %w", userID, err)
	}

	_, err = g.db.ExecContext(ctx, `
		INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			items = EXCLUDED.items,
			updated_at = NOW()`,
		userID, raw)
	if err != nil {
		return fmt.Errorf("failed to save cart of %s: %w", userID, err)
	}
	return nil
}
