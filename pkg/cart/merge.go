// Package cart holds a shopper's cart lines, persists them per device and,
// once the shopper is signed in, per user on the server.
package cart

import (
	"context"

	"gitlab.connectwisedev.com/storefront-service/models"
)

// GuestID namespaces the cart of a shopper who has not signed in.
const GuestID = "guest"

// LocalKey is the device-local key holding userID's cart.
func LocalKey(userID string) string {
	if userID == "" {
		userID = GuestID
	}
	return "cart_" + userID
}

// LocalStore is device-scoped cart storage keyed by LocalKey.
type LocalStore interface {
	Read(ctx context.Context, key string) ([]models.CartLine, error)
	Write(ctx context.Context, key string, lines []models.CartLine) error
	Delete(ctx context.Context, key string) error
}

// RemoteStore is the per-user cart record on the server.
type RemoteStore interface {
	GetCart(ctx context.Context, userID string) ([]models.CartLine, error)
	UpsertCart(ctx context.Context, userID string, lines []models.CartLine) error
}

// Merge folds remote into local. Lines with the same id and size have their
// quantities summed; the result lists local lines in order, then the remote
// lines that matched nothing.
func Merge(local, remote []models.CartLine) []models.CartLine {
	merged := make([]models.CartLine, 0, len(local)+len(remote))
	index := make(map[string]int, len(local)+len(remote))

	for _, l := range local {
		if i, ok := index[l.Key()]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.Key()] = len(merged)
		merged = append(merged, l)
	}
	for _, r := range remote {
		if i, ok := index[r.Key()]; ok {
			merged[i].Quantity += r.Quantity
			continue
		}
		index[r.Key()] = len(merged)
		merged = append(merged, r)
	}
	return merged
}
