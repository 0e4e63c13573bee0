// Package storage provides the blob storage backends used for recipe images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrObjectNotFound is returned when a key does not exist in the store
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that are empty or escape the store root
var ErrInvalidKey = errors.New("invalid object key")

// BlobStore defines the operations the services need from a blob storage backend.
// Keys are slash separated relative paths such as "recipe_images/abc.png".
type BlobStore interface {
	// Put stores data under key, replacing any existing object
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the object stored under key or ErrObjectNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the object stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a BlobStore backend
type Config struct {
	// Driver is one of "local", "s3" or "memory"
	Driver string

	// Local backend root directory
	Path string

	// S3 backend configuration
	Bucket   string
	Region   string
	Endpoint string
}

// New creates the BlobStore described by cfg
func New(ctx context.Context, cfg Config) (BlobStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "local", "":
		return NewLocalStore(cfg.Path)
	case "s3":
		return NewS3Store(ctx, cfg)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s (supported: local, s3, memory)", cfg.Driver)
	}
}

// cleanKey normalizes key and rejects keys that would escape the store root
func cleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
