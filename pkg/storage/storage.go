// Package storage hosts uploaded files (product images, import CSVs) and
// hands back the public reference a browser can load them from.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitlab.connectwisedev.com/storefront-service/pkg/config"
)

// ProductImagePrefix is the key prefix of every product image upload.
const ProductImagePrefix = "products/"

// FileStore stores objects under keys.
type FileStore interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	// Get opens the object stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// ObjectKey builds a collision-free key for an uploaded image, keeping the
// original file extension.
func ObjectKey(filename string, now time.Time) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	name := fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.New().String()[:8])
	if ext != "" {
		name += "." + ext
	}
	return ProductImagePrefix + name
}

// New builds the FileStore selected by cfg.
func New(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Backend {
	case config.StorageS3:
		return NewS3Store(ctx, cfg.Bucket, cfg.PublicURL)
	case config.StorageDisk, "":
		return NewDiskStore(cfg.Dir, cfg.PublicURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
