package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"userdesk/local-app/internal/log"
)

// PoolStore implements KVStore on a pure-Go SQLite connection pool.
// Pool is safe for concurrent use; each call takes its own connection.
type PoolStore struct {
	pool   *sqlitex.Pool
	path   string
	logger *log.Logger
}

// OpenSQLitePool opens a connection pool on the database at path. The kv
// table is created on every new connection.
func OpenSQLitePool(ctx context.Context, path string, logger *log.Logger) (*PoolStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite pool: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory '%s': %w", filepath.Dir(path), err)
	}

	poolSize := runtime.NumCPU()
	if poolSize < 4 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: opening %s: %w", path, err)
	}

	logger.Info(ctx, "SQLite pool opened", log.Fields{"path": path, "pool_size": poolSize})
	return &PoolStore{pool: pool, path: path, logger: logger}, nil
}

// prepareConnection applies pragmas and the schema once per connection.
func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlite pool: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, kvSchema+";", nil); err != nil {
		return fmt.Errorf("sqlite pool: creating kv table: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (p *PoolStore) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := p.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: take: %w", err)
	}
	defer p.pool.Put(conn)

	var value []byte
	found := false
	err = sqlitex.Execute(conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read key '%s': %w", key, err)
	}
	if !found {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

// Set replaces the value stored under key inside an immediate transaction.
func (p *PoolStore) Set(ctx context.Context, key string, value []byte) (err error) {
	conn, err := p.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlite pool: take: %w", err)
	}
	defer p.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer endFn(&err)

	err = sqlitex.Execute(conn, kvUpsert, &sqlitex.ExecOptions{
		Args: []any{key, value, time.Now().UTC().Format(time.RFC3339Nano)},
	})
	if err != nil {
		return fmt.Errorf("failed to write key '%s': %w", key, err)
	}
	return nil
}

// Close closes all connections in the pool.
func (p *PoolStore) Close() error {
	if err := p.pool.Close(); err != nil {
		p.logger.Error(context.Background(), "SQLite pool close error", log.Fields{"path": p.path, "error": err})
		return fmt.Errorf("sqlite pool: closing %s: %w", p.path, err)
	}
	return nil
}
