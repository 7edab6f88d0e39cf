// Package storage provides the flat key-value port that chart history is
// persisted through, with memory, file and SQL adapters.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/gantt/internal/config"
	"github.com/randalmurphal/gantt/internal/db/driver"
)

// ErrNotFound is returned by Get when a key holds no value.
var ErrNotFound = errors.New("key not found")

// KV is a flat string-keyed byte store.
// All implementations must be safe for concurrent access.
type KV interface {
	// Get returns the value under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns every key with the given prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)
	// Close releases resources.
	Close() error
}

// Open creates the KV adapter selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (KV, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendFile:
		return NewFileKV(cfg.Path)
	}

	dialect, err := driver.ParseDialect(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
	if dialect == driver.DialectPostgres {
		return OpenSQL(ctx, dialect, cfg.DSN)
	}
	return OpenSQL(ctx, dialect, cfg.Path)
}
