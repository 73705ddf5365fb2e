// Package storage provides functionality for persisting and retrieving userdesk data.
// Records are kept in a key-value store; this file holds the store interface
// and the backend factory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
)

// ErrKeyNotFound is returned by KVStore.Get when the key has never been set.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is a durable key-value store holding opaque encoded values.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// DBDriver represents the type of storage backend
type DBDriver string

const (
	SQLite     DBDriver = "sqlite"
	SQLitePure DBDriver = "sqlite-pure"
	File       DBDriver = "file"
	Memory     DBDriver = "memory"
)

// validateDBDriver maps the configured database type to a DBDriver.
func validateDBDriver(databaseType string) (DBDriver, error) {
	switch DBDriver(databaseType) {
	case SQLite, SQLitePure, File, Memory:
		return DBDriver(databaseType), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", databaseType)
	}
}

// NewStorage opens the key-value backend selected by cfg.DatabaseType.
func NewStorage(cfg *model.Config, logger *log.Logger) (KVStore, error) {
	driver, err := validateDBDriver(cfg.DatabaseType)
	if err != nil {
		return nil, fmt.Errorf("invalid database driver '%s': %w", cfg.DatabaseType, err)
	}

	// Construct the full path for the database file
	dataSourceName := filepath.Join(cfg.DatabaseDir, cfg.DatabaseFile)

	switch driver {
	case SQLite:
		return OpenSQLite(dataSourceName, logger)
	case SQLitePure:
		return OpenSQLitePool(context.Background(), dataSourceName, logger)
	case File:
		return OpenFileStore(cfg.DatabaseDir, logger)
	default:
		return NewMemoryStore(), nil
	}
}
