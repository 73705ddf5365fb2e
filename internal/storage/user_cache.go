package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
)

// LoadState classifies a persisted user collection.
type LoadState int

const (
	// Absent means the key has never been written or could not be read.
	Absent LoadState = iota
	// Malformed means the value is not a JSON array of user records.
	Malformed
	// Empty means the value is a well-formed, empty array.
	Empty
	// Loaded means the value held at least one user record.
	Loaded
)

// String returns the name of the load state.
func (s LoadState) String() string {
	switch s {
	case Absent:
		return "absent"
	case Malformed:
		return "malformed"
	case Empty:
		return "empty"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// UserCache persists user collections as JSON arrays in a KVStore.
type UserCache struct {
	kv     KVStore
	logger *log.Logger
}

// NewUserCache creates a UserCache over kv.
func NewUserCache(kv KVStore, logger *log.Logger) *UserCache {
	return &UserCache{kv: kv, logger: logger}
}

// Load reads and classifies the collection stored under key. Read errors
// are logged and reported as Absent.
func (c *UserCache) Load(ctx context.Context, key string) ([]model.User, LoadState) {
	data, err := c.kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, Absent
	}
	if err != nil {
		c.logger.Error(ctx, "Failed to read persisted users", log.Fields{"key": key, "error": err})
		return nil, Absent
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Warn(ctx, "Persisted users are not an array", log.Fields{"key": key})
		return nil, Malformed
	}

	users, err := decodeUsers(trimmed)
	if err != nil {
		c.logger.Warn(ctx, "Persisted users could not be parsed", log.Fields{"key": key, "error": err})
		return nil, Malformed
	}
	if len(users) == 0 {
		return []model.User{}, Empty
	}
	return users, Loaded
}

// decodeUsers parses a JSON array in which every element is an object
// with a numeric id.
func decodeUsers(data []byte) ([]model.User, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(elements))
	for i, element := range elements {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(element, &fields); err != nil || fields == nil {
			return nil, fmt.Errorf("element %d is not a user object", i)
		}
		var id int
		if err := json.Unmarshal(fields["id"], &id); err != nil {
			return nil, fmt.Errorf("element %d has no numeric id", i)
		}

		var u model.User
		if err := json.Unmarshal(element, &u); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// Read returns the collection stored under key. ok is false when the value
// is absent or cannot be parsed as a sequence of users.
func (c *UserCache) Read(ctx context.Context, key string) ([]model.User, bool) {
	users, state := c.Load(ctx, key)
	return users, state == Loaded || state == Empty
}

// Write serializes the full collection and stores it under key.
func (c *UserCache) Write(ctx context.Context, key string, users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	if err := c.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to persist users: %w", err)
	}
	return nil
}
