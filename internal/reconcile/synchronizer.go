// Package reconcile decides, once per session, whether the record store is
// seeded from persisted storage or from the remote directory.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
	"userdesk/local-app/internal/remote"
	"userdesk/local-app/internal/storage"
)

// MsgFetchFailed is the notification shown when the directory cannot be reached.
const MsgFetchFailed = "Failed to fetch users"

// ErrAlreadyRan is returned by a second call to Run.
var ErrAlreadyRan = errors.New("synchronization already ran")

// Source names where the seeded collection came from.
type Source string

const (
	SourcePersisted Source = "persisted"
	SourceRemote    Source = "remote"
	SourceNone      Source = "none"
)

// Result describes the branch taken by Run.
type Result struct {
	Source Source
	Count  int
	// Branch is the classification of the persisted value.
	Branch storage.LoadState
}

// Loader classifies the persisted collection.
type Loader interface {
	Load(ctx context.Context, key string) ([]model.User, storage.LoadState)
}

// Seeder receives the reconciled collection.
type Seeder interface {
	ReplaceAll(ctx context.Context, users []model.User) error
}

// Notifier displays a transient message to the user.
type Notifier interface {
	Notify(message string)
}

// Synchronizer seeds the record store at startup.
type Synchronizer struct {
	loader    Loader
	directory remote.Directory
	seeder    Seeder
	notifier  Notifier
	key       string
	logger    *log.Logger

	once sync.Once
}

// NewSynchronizer creates a Synchronizer reading and writing key.
func NewSynchronizer(loader Loader, directory remote.Directory, seeder Seeder, notifier Notifier, key string, logger *log.Logger) *Synchronizer {
	return &Synchronizer{
		loader:    loader,
		directory: directory,
		seeder:    seeder,
		notifier:  notifier,
		key:       key,
		logger:    logger,
	}
}

// Run performs the startup reconciliation. Non-empty, well-formed persisted
// data wins and no fetch happens. Otherwise the directory is fetched once;
// a fetch failure is logged and notified, and the store stays empty.
// Only a failure to seed the store is returned as an error.
func (s *Synchronizer) Run(ctx context.Context) (Result, error) {
	ran := true
	s.once.Do(func() { ran = false })
	if ran {
		return Result{}, ErrAlreadyRan
	}

	users, state := s.loader.Load(ctx, s.key)
	if state == storage.Loaded {
		if err := s.seeder.ReplaceAll(ctx, users); err != nil {
			return Result{Source: SourceNone, Branch: state}, fmt.Errorf("failed to load persisted users: %w", err)
		}
		s.logger.Info(ctx, "Loaded users from storage", log.Fields{"key": s.key, "count": len(users)})
		return Result{Source: SourcePersisted, Count: len(users), Branch: state}, nil
	}

	s.logger.Info(ctx, "Fetching users from directory", log.Fields{"key": s.key, "persisted": state.String()})
	fetched, err := s.directory.FetchAll(ctx)
	if err != nil {
		s.logger.Error(ctx, MsgFetchFailed, log.Fields{"error": err})
		s.notify(MsgFetchFailed)
		return Result{Source: SourceNone, Branch: state}, nil
	}

	if err := s.seeder.ReplaceAll(ctx, fetched); err != nil {
		return Result{Source: SourceNone, Branch: state}, fmt.Errorf("failed to store fetched users: %w", err)
	}
	s.logger.Info(ctx, "Seeded users from directory", log.Fields{"count": len(fetched)})
	return Result{Source: SourceRemote, Count: len(fetched), Branch: state}, nil
}

func (s *Synchronizer) notify(message string) {
	if s.notifier != nil {
		s.notifier.Notify(message)
	}
}
