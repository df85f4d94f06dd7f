package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/auth"
	"gitlab.connectwisedev.com/storefront-service/pkg/cart"
)

// DeviceHeader names the browser/device whose local cart a request uses.
const DeviceHeader = "X-Device-ID"

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
	cartKey
)

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// identify attaches the signed-in user, if any. Bad or expired tokens are
// treated as anonymous.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, err := s.Auth.Authenticate(r.Context(), token)
		if errors.Is(err, models.ErrUnauthorized) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, u)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

func tokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userFrom(r.Context()); !ok {
			writeError(w, models.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireUserFunc(h http.HandlerFunc) http.HandlerFunc {
	return s.requireUser(h).ServeHTTP
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := userFrom(r.Context())
		if err := auth.RequireAdmin(u); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deviceID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(DeviceHeader))
	if id == "" {
		verr := models.NewValidationError()
		verr.Add("device", DeviceHeader+" header is required")
		return "", verr
	}
	return id, nil
}

// withCart resolves the device cart, switches it to the request's user and
// holds the device for the rest of the request.
func (s *Server) withCart(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		device, err := deviceID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		u, _ := userFrom(r.Context())
		st, release, err := s.Carts.Acquire(r.Context(), device, u.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		defer release()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), cartKey, st)))
	})
}

func cartFrom(ctx context.Context) *cart.Store {
	st, _ := ctx.Value(cartKey).(*cart.Store)
	return st
}
