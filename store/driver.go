package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
// Get returns nil, nil for a missing key.
type Driver interface {
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Blob model related methods.
	GetBlob(ctx context.Context, key string) ([]byte, error)
	SetBlob(ctx context.Context, key string, value []byte) error
	ListBlobKeys(ctx context.Context) ([]string, error)
}

// SQLDriver is a driver backed by database/sql. Its schema is applied by
// Store.Migrate.
type SQLDriver interface {
	Driver
	GetDB() *sql.DB
}
