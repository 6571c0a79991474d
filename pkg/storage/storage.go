// Package storage provides a small key-value store abstraction with memory,
// file and sqlite implementations. Values are opaque byte blobs.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has no value
var ErrNotFound = errors.New("storage: key not found")

// Store defines the interface for key-value persistence
type Store interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the backend
	Close() error
}

// StoreType identifies the storage backend
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeFile   StoreType = "file"
	StoreTypeSQLite StoreType = "sqlite"
)

// Config holds storage configuration
type Config struct {
	Type StoreType

	// Path is the directory for the file store or the database file for sqlite
	Path string
}

// New creates a new Store implementation based on configuration
func New(cfg *Config) (Store, error) {
	switch cfg.Type {
	case StoreTypeFile:
		return NewFileStore(cfg.Path)
	case StoreTypeSQLite:
		return NewSQLiteStore(cfg.Path)
	case StoreTypeMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
