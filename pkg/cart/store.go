package cart

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gitlab.connectwisedev.com/storefront-service/models"
)

// Store is one shopper's cart. It starts as a guest cart; Login switches it
// to the user's cart and Logout back. Safe for concurrent use.
type Store struct {
	local  LocalStore
	remote RemoteStore
	syncer *Syncer

	mu     sync.Mutex
	userID string
	lines  []models.CartLine
}

// New opens the guest cart held in local.
func New(ctx context.Context, local LocalStore, remote RemoteStore, syncer *Syncer) (*Store, error) {
	lines, err := local.Read(ctx, LocalKey(""))
	if err != nil {
		return nil, err
	}
	return &Store{local: local, remote: remote, syncer: syncer, lines: lines}, nil
}

// UserID is the signed-in user, or "" for a guest.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Authenticated reports whether a user is signed in.
func (s *Store) Authenticated() bool {
	return s.UserID() != ""
}

// Lines returns a copy of the current cart.
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneLines(s.lines)
}

// Login adopts userID's cart: the server copy merged with the device copy,
// plus whatever was put in the cart while signed out. The merged cart is
// written back to both. A failed read leaves the store as it was.
func (s *Store) Login(ctx context.Context, userID string) ([]models.CartLine, error) {
	if userID == "" {
		return nil, fmt.Errorf("login without user id: %w", models.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == userID {
		return models.CloneLines(s.lines), nil
	}

	remote, err := s.remote.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart for user %s: %w", userID, err)
	}
	local, err := s.local.Read(ctx, LocalKey(userID))
	if err != nil {
		return nil, err
	}

	if sameLines(local, remote) {
		// device and server copies are already in sync
		local = nil
	}
	guest := s.userID == ""
	if guest && len(s.lines) > 0 {
		local = Merge(local, s.lines)
	}
	merged := Merge(local, remote)

	if err := s.local.Write(ctx, LocalKey(userID), merged); err != nil {
		return nil, err
	}
	if err := s.syncer.Enqueue(userID, merged); err != nil {
		log.Printf("Error queueing cart sync for user %s: %v", userID, err)
	}
	if guest {
		if err := s.local.Delete(ctx, LocalKey("")); err != nil {
			log.Printf("Error clearing guest cart: %v", err)
		}
	}

	s.userID = userID
	s.lines = merged
	return models.CloneLines(merged), nil
}

// Logout returns to the guest cart stored on the device.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == "" {
		return nil
	}
	lines, err := s.local.Read(ctx, LocalKey(""))
	if err != nil {
		return err
	}
	s.userID = ""
	s.lines = lines
	return nil
}

// AddToCart adds line, summing quantities with an existing line of the same id.
func (s *Store) AddToCart(ctx context.Context, line models.CartLine) ([]models.CartLine, error) {
	verr := models.NewValidationError()
	if line.ID == "" {
		verr.Add("id", "Product is required")
	}
	if line.Quantity <= 0 {
		verr.Add("quantity", "Quantity must be at least 1")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, func(lines []models.CartLine) []models.CartLine {
		for i := range lines {
			if lines[i].ID == line.ID {
				lines[i].Quantity += line.Quantity
				return lines
			}
		}
		return append(lines, line)
	})
}

// RemoveFromCart drops the line with id.
func (s *Store) RemoveFromCart(ctx context.Context, id string) ([]models.CartLine, error) {
	return s.mutate(ctx, func(lines []models.CartLine) []models.CartLine {
		out := lines[:0]
		for _, l := range lines {
			if l.ID != id {
				out = append(out, l)
			}
		}
		return out
	})
}

// IncrementQuantity adds one unit to the line with id.
func (s *Store) IncrementQuantity(ctx context.Context, id string) ([]models.CartLine, error) {
	return s.mutate(ctx, func(lines []models.CartLine) []models.CartLine {
		for i := range lines {
			if lines[i].ID == id {
				lines[i].Quantity++
			}
		}
		return lines
	})
}

// DecrementQuantity takes one unit off the line with id, removing the line
// instead of letting it reach zero.
func (s *Store) DecrementQuantity(ctx context.Context, id string) ([]models.CartLine, error) {
	return s.mutate(ctx, func(lines []models.CartLine) []models.CartLine {
		out := lines[:0]
		for _, l := range lines {
			if l.ID == id {
				l.Quantity--
				if l.Quantity <= 0 {
					continue
				}
			}
			out = append(out, l)
		}
		return out
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) ([]models.CartLine, error) {
	return s.mutate(ctx, func([]models.CartLine) []models.CartLine {
		return []models.CartLine{}
	})
}

// mutate applies fn to a copy of the lines, persists the result locally and
// queues the server write. The store keeps its old lines if the local write fails.
func (s *Store) mutate(ctx context.Context, fn func([]models.CartLine) []models.CartLine) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(models.CloneLines(s.lines))
	if err := s.local.Write(ctx, LocalKey(s.userID), next); err != nil {
		return nil, err
	}
	s.lines = next

	if s.userID != "" {
		if err := s.syncer.Enqueue(s.userID, next); err != nil {
			log.Printf("Error queueing cart sync for user %s: %v", s.userID, err)
		}
	}
	return models.CloneLines(next), nil
}

func sameLines(a, b []models.CartLine) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
