package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/database"
)

const userColumns = `id, email, password_hash, name, phone, address, is_admin, created_at`

// Users is the account table gateway.
type Users struct {
	db *sql.DB
}

// NewUsers returns the user gateway over c.
func NewUsers(c *database.DBClient) *Users {
	return &Users{db: c.GetDB()}
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.Address, &u.IsAdmin, &u.CreatedAt)
	return u, err
}

// CreateUser stores u under a fresh id. Emails are unique, case-insensitively.
func (g *Users) CreateUser(ctx context.Context, u models.User) (created models.User, err error) {
	ctx, span := startSpan(ctx, "CreateUser")
	defer func() { endSpan(span, err) }()

	u.ID = uuid.New().String()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	err = g.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, phone, address, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.Address, u.IsAdmin,
	).Scan(&u.CreatedAt)
	if database.IsUniqueViolation(err) {
		return models.User{}, fmt.Errorf("user %s: %w", u.Email, models.ErrConflict)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// UserByEmail looks a user up by login email.
func (g *Users) UserByEmail(ctx context.Context, email string) (u models.User, err error) {
	ctx, span := startSpan(ctx, "UserByEmail")
	defer func() { endSpan(span, err) }()

	email = strings.ToLower(strings.TrimSpace(email))
	u, err = scanUser(g.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// UserByID looks a user up by id.
func (g *Users) UserByID(ctx context.Context, id string) (u models.User, err error) {
	ctx, span := startSpan(ctx, "UserByID", attribute.String("user.id", id))
	defer func() { endSpan(span, err) }()

	u, err = scanUser(g.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) || isBadIdentifier(err) {
		return models.User{}, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return u, nil
}

// UpdateProfile replaces the editable profile fields of user id.
func (g *Users) UpdateProfile(ctx context.Context, id string, p models.Profile) (err error) {
	ctx, span := startSpan(ctx, "UpdateProfile", attribute.String("user.id", id))
	defer func() { endSpan(span, err) }()

	res, err := g.db.ExecContext(ctx,
		`UPDATE users SET name = $2, phone = $3, address = $4 WHERE id = $1`,
		id, p.Name, p.Phone, p.Address)
	if err != nil {
		return fmt.Errorf("failed to update profile of %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update profile of %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return nil
}
