package records

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdesk/local-app/internal/event"
	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
)

type fakePersister struct {
	writes [][]model.User
	fail   error
}

func (p *fakePersister) Write(_ context.Context, key string, users []model.User) error {
	if p.fail != nil {
		return p.fail
	}
	p.writes = append(p.writes, append([]model.User(nil), users...))
	return nil
}

func (p *fakePersister) last() []model.User {
	if len(p.writes) == 0 {
		return nil
	}
	return p.writes[len(p.writes)-1]
}

var seed = []model.User{
	{ID: 1, Name: "Alice", Email: "alice@x.io", Phone: "1"},
	{ID: 2, Name: "Bob", Email: "bob@x.io", Phone: "2"},
	{ID: 5, Name: "Carol", Email: "carol@x.io", Phone: "3"},
}

func newSeededStore(t *testing.T) (*Store, *fakePersister, *[]event.Event) {
	t.Helper()
	logger := log.NewNopLogger()
	em := event.NewEventManager(logger)
	var seen []event.Event
	em.Subscribe(func(e event.Event) { seen = append(seen, e) }, event.CollectionChanged...)

	p := &fakePersister{}
	s := NewStore(p, "users", em, logger)
	require.NoError(t, s.ReplaceAll(context.Background(), seed))
	return s, p, &seen
}

func TestReplaceAllPersistsAndPublishes(t *testing.T) {
	s, p, seen := newSeededStore(t)
	assert.Equal(t, seed, s.List())
	assert.Equal(t, seed, p.last())
	require.Len(t, *seen, 1)
	assert.Equal(t, event.RecordsReplaced, (*seen)[0].Type)
}

func TestReplaceAllDropsDuplicateIDs(t *testing.T) {
	s, _, _ := newSeededStore(t)
	err := s.ReplaceAll(context.Background(), []model.User{
		{ID: 1, Name: "first"}, {ID: 1, Name: "second"}, {ID: 2, Name: "other"},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.User{{ID: 1, Name: "first"}, {ID: 2, Name: "other"}}, s.List())
}

func TestAddAllocatesFreshID(t *testing.T) {
	s, p, seen := newSeededStore(t)
	before := s.List()

	added, err := s.Add(context.Background(), model.User{Name: "Dave", Email: "dave@x.io"})
	require.NoError(t, err)
	assert.Equal(t, 6, added.ID)

	after := s.List()
	require.Len(t, after, len(before)+1)
	assert.Equal(t, before, after[:len(before)])
	assert.Equal(t, added, after[len(after)-1])
	assert.Equal(t, after, p.last())
	assert.Equal(t, event.RecordAdded, (*seen)[len(*seen)-1].Type)

	// Ids are never reused, even after the highest id is deleted.
	ok, err := s.Delete(context.Background(), 6)
	require.NoError(t, err)
	require.True(t, ok)
	again, err := s.Add(context.Background(), model.User{Name: "Eve"})
	require.NoError(t, err)
	assert.Equal(t, 7, again.ID)
}

func TestAddStopsAtMaxID(t *testing.T) {
	s, p, _ := newSeededStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, []model.User{{ID: math.MaxInt - 1, Name: "Alice"}}))
	added, err := s.Add(ctx, model.User{Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, added.ID)

	writes := len(p.writes)
	_, err = s.Add(ctx, model.User{Name: "Carol"})
	require.ErrorIs(t, err, ErrIDsExhausted)
	assert.Len(t, s.List(), 2)
	assert.Len(t, p.writes, writes, "nothing is written")

	require.NoError(t, s.ReplaceAll(ctx, []model.User{{ID: math.MaxInt, Name: "Alice"}}))
	_, err = s.Add(ctx, model.User{Name: "Bob"})
	require.ErrorIs(t, err, ErrIDsExhausted)

	require.NoError(t, s.ReplaceAll(ctx, seed))
	added, err = s.Add(ctx, model.User{Name: "Dave"})
	require.NoError(t, err)
	assert.Equal(t, 6, added.ID)
}

func TestUpdateReplacesInPlace(t *testing.T) {
	s, p, _ := newSeededStore(t)
	updated := model.User{ID: 2, Name: "Robert", Email: "rob@x.io", Phone: "22"}
	require.NoError(t, s.Update(context.Background(), updated))

	list := s.List()
	assert.Len(t, list, len(seed))
	assert.Equal(t, updated, list[1])
	assert.Equal(t, list, p.last())
}

func TestUpdateMissingID(t *testing.T) {
	s, p, seen := newSeededStore(t)
	writes := len(p.writes)
	events := len(*seen)

	err := s.Update(context.Background(), model.User{ID: 42, Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, seed, s.List())
	assert.Len(t, p.writes, writes)
	assert.Len(t, *seen, events)
}

func TestDelete(t *testing.T) {
	s, p, _ := newSeededStore(t)
	ok, err := s.Delete(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, ok)

	list := s.List()
	assert.Len(t, list, len(seed)-1)
	_, found := s.Get(2)
	assert.False(t, found)
	assert.Equal(t, list, p.last())

	ok, err = s.Delete(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, s.List(), len(seed)-1)
}

func TestFailedWriteLeavesCollectionUnchanged(t *testing.T) {
	s, p, _ := newSeededStore(t)
	p.fail = errors.New("disk full")

	_, err := s.Add(context.Background(), model.User{Name: "Dave"})
	assert.Error(t, err)
	assert.Error(t, s.Update(context.Background(), model.User{ID: 1, Name: "Changed"}))
	_, err = s.Delete(context.Background(), 1)
	assert.Error(t, err)
	assert.Equal(t, seed, s.List())

	// The allocator did not advance on the failed add.
	p.fail = nil
	added, err := s.Add(context.Background(), model.User{Name: "Dave"})
	require.NoError(t, err)
	assert.Equal(t, 6, added.ID)
}

func TestListReturnsSnapshot(t *testing.T) {
	s, _, _ := newSeededStore(t)
	list := s.List()
	list[0].Name = "mutated"
	u, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Alice", u.Name)
}
