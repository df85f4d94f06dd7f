// Package auth signs shoppers up and in, and resolves bearer tokens back to
// users.
package auth

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gitlab.connectwisedev.com/storefront-service/models"
)

// UserStore is the user table.
type UserStore interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, p models.Profile) error
}

// SessionStore keeps issued tokens until they expire.
type SessionStore interface {
	Save(ctx context.Context, s models.Session) error
	Get(ctx context.Context, token string) (models.Session, error)
	Delete(ctx context.Context, token string) error
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Service implements the account flows.
type Service struct {
	users    UserStore
	sessions SessionStore
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

// NewService returns a Service issuing sessions valid for ttl.
func NewService(users UserStore, sessions SessionStore, ttl time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// SignUp registers a new shopper. Every field is required.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Phone == "" || in.Address == "" {
		verr := models.NewValidationError()
		verr.Add("form", "Please fill in all fields.")
		return models.User{}, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, models.User{
		Email:        in.Email,
		Name:         in.Name,
		Phone:        in.Phone,
		Address:      in.Address,
		PasswordHash: string(hash),
	})
	if err != nil {
		return models.User{}, err
	}
	log.Printf("Registered user %s", u.ID)
	return u, nil
}

// SignIn checks the credentials and issues a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (models.Session, models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		verr := models.NewValidationError()
		verr.Add("form", "Please enter both email and password.")
		return models.Session{}, models.User{}, verr
	}

	u, err := s.users.UserByEmail(ctx, email)
	if models.IsNotFound(err) {
		return models.Session{}, models.User{}, fmt.Errorf("invalid email or password: %w", models.ErrUnauthorized)
	}
	if err != nil {
		return models.Session{}, models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.Session{}, models.User{}, fmt.Errorf("invalid email or password: %w", models.ErrUnauthorized)
	}

	sess := models.Session{
		Token:     uuid.New().String(),
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return models.Session{}, models.User{}, err
	}
	return sess, u, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, fmt.Errorf("missing token: %w", models.ErrUnauthorized)
	}
	sess, err := s.sessions.Get(ctx, token)
	if models.IsNotFound(err) {
		return models.User{}, fmt.Errorf("unknown or expired session: %w", models.ErrUnauthorized)
	}
	if err != nil {
		return models.User{}, err
	}

	u, err := s.users.UserByID(ctx, sess.UserID)
	if models.IsNotFound(err) {
		return models.User{}, fmt.Errorf("session user gone: %w", models.ErrUnauthorized)
	}
	return u, err
}

// SignOut revokes token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// UpdateProfile saves the editable profile fields and returns the fresh user.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p models.Profile) (models.User, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	if p.Name == "" {
		verr := models.NewValidationError()
		verr.Add("name", "Name is required")
		return models.User{}, verr
	}

	if err := s.users.UpdateProfile(ctx, userID, p); err != nil {
		return models.User{}, err
	}
	return s.users.UserByID(ctx, userID)
}

// RequireAdmin fails with ErrForbidden unless u is an admin.
func RequireAdmin(u models.User) error {
	if !u.IsAdmin {
		return fmt.Errorf("admin access required: %w", models.ErrForbidden)
	}
	return nil
}
