// Package records owns the canonical in-memory user collection.
package records

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"userdesk/local-app/internal/event"
	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
)

// ErrNotFound is returned when a mutation names an id that is not present.
var ErrNotFound = errors.New("user not found")

// ErrIDsExhausted is returned by Add once the highest id is math.MaxInt.
var ErrIDsExhausted = errors.New("no user ids left")

// Persister stores the full collection under a key.
type Persister interface {
	Write(ctx context.Context, key string, users []model.User) error
}

// Store is the single owner of the user collection. Every mutation writes
// the resulting collection through to the Persister before swapping it in,
// so a failed write leaves both copies unchanged.
type Store struct {
	mu    sync.RWMutex
	users []model.User
	// nextID is the id Add assigns next. Zero means exhausted.
	nextID int

	persister Persister
	key       string
	events    *event.EventManager
	logger    *log.Logger
}

// NewStore creates an empty Store persisting under key.
func NewStore(persister Persister, key string, events *event.EventManager, logger *log.Logger) *Store {
	return &Store{
		users:     []model.User{},
		nextID:    1,
		persister: persister,
		key:       key,
		events:    events,
		logger:    logger,
	}
}

// List returns a snapshot of the collection in insertion order.
func (s *Store) List() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User(nil), s.users...)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Get returns the record with the given id.
func (s *Store) Get(id int) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.users, id); i >= 0 {
		return s.users[i], true
	}
	return model.User{}, false
}

// ReplaceAll discards the collection and replaces it with users. Later
// records repeating an earlier id are dropped.
func (s *Store) ReplaceAll(ctx context.Context, users []model.User) error {
	next := make([]model.User, 0, len(users))
	seen := make(map[int]bool, len(users))
	for _, u := range users {
		if seen[u.ID] {
			s.logger.Warn(ctx, "Dropping duplicate user id", log.Fields{"id": u.ID, "name": u.Name})
			continue
		}
		seen[u.ID] = true
		next = append(next, u)
	}

	s.mu.Lock()
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.nextID = successor(maxID(next))
	s.mu.Unlock()

	s.publish(event.RecordsReplaced, len(next))
	return nil
}

// Add appends user with a freshly allocated id and returns the stored record.
func (s *Store) Add(ctx context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	if s.nextID == 0 {
		s.mu.Unlock()
		return model.User{}, ErrIDsExhausted
	}
	user.ID = s.nextID
	next := make([]model.User, len(s.users), len(s.users)+1)
	copy(next, s.users)
	next = append(next, user)
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return model.User{}, err
	}
	s.nextID = successor(s.nextID)
	s.mu.Unlock()

	s.publish(event.RecordAdded, user)
	return user, nil
}

// Update replaces the fields of the record with user.ID in place.
func (s *Store) Update(ctx context.Context, user model.User) error {
	s.mu.Lock()
	i := indexOf(s.users, user.ID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("update user %d: %w", user.ID, ErrNotFound)
	}
	next := append([]model.User(nil), s.users...)
	next[i] = user
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publish(event.RecordUpdated, user)
	return nil
}

// Delete removes the first record with id. It reports false when no record
// matched, in which case nothing is written.
func (s *Store) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	i := indexOf(s.users, id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	next := make([]model.User, 0, len(s.users)-1)
	next = append(next, s.users[:i]...)
	next = append(next, s.users[i+1:]...)
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.mu.Unlock()

	s.publish(event.RecordDeleted, id)
	return true, nil
}

// commit persists next and swaps it in. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []model.User) error {
	if err := s.persister.Write(ctx, s.key, next); err != nil {
		s.logger.Error(ctx, "Failed to persist users", log.Fields{"key": s.key, "error": err})
		return fmt.Errorf("persist users: %w", err)
	}
	s.users = next
	return nil
}

func (s *Store) publish(t event.EventType, data interface{}) {
	if s.events != nil {
		s.events.Publish(event.Event{Type: t, Data: data})
	}
}

func indexOf(users []model.User, id int) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// successor returns id+1, or 0 when id+1 would overflow.
func successor(id int) int {
	if id == math.MaxInt {
		return 0
	}
	return id + 1
}

func maxID(users []model.User) int {
	m := 0
	for _, u := range users {
		if u.ID > m {
			m = u.ID
		}
	}
	return m
}
