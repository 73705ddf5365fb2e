package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdesk/local-app/internal/event"
	"userdesk/local-app/internal/form"
	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
	"userdesk/local-app/internal/reconcile"
	"userdesk/local-app/internal/records"
	"userdesk/local-app/internal/storage"
)

type recorder struct{ messages []string }

func (r *recorder) Notify(message string) { r.messages = append(r.messages, message) }

func (r *recorder) last() string {
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

type harness struct {
	kv     *storage.MemoryStore
	cache  *storage.UserCache
	store  *records.Store
	events *event.EventManager
	notes  *recorder
	ctrl   *Controller
	logger *log.Logger
}

func newHarness(t *testing.T, seed ...model.User) *harness {
	t.Helper()
	logger := log.NewNopLogger()
	kv := storage.NewMemoryStore()
	cache := storage.NewUserCache(kv, logger)
	events := event.NewEventManager(logger)
	store := records.NewStore(cache, "users", events, logger)
	notes := &recorder{}
	ctrl := NewController(store, events, notes, logger)
	if len(seed) > 0 {
		require.NoError(t, store.ReplaceAll(context.Background(), seed))
	}
	return &harness{kv: kv, cache: cache, store: store, events: events, notes: notes, ctrl: ctrl, logger: logger}
}

func (h *harness) persisted(t *testing.T) []model.User {
	t.Helper()
	users, ok := h.cache.Read(context.Background(), "users")
	require.True(t, ok)
	return users
}

func TestFilterByName(t *testing.T) {
	users := []model.User{{Name: "Alice"}, {Name: "Bob"}}
	assert.Equal(t, []model.User{{Name: "Alice"}}, FilterByName(users, "ali"))
	assert.Equal(t, []model.User{{Name: "Alice"}}, FilterByName(users, "ALI"))
	assert.Equal(t, users, FilterByName(users, ""))
	assert.Empty(t, FilterByName(users, "zed"))
}

func TestViewFollowsCollectionChanges(t *testing.T) {
	h := newHarness(t, model.User{ID: 1, Name: "Alice", Email: "alice@x.io"}, model.User{ID: 2, Name: "Bob", Email: "bob@x.io"})
	h.ctrl.SearchChanged("ali")
	assert.Len(t, h.ctrl.Users(), 1)

	_, err := h.store.Add(context.Background(), model.User{Name: "Alina", Email: "alina@x.io"})
	require.NoError(t, err)
	names := []string{}
	for _, u := range h.ctrl.Users() {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"Alice", "Alina"}, names)

	h.ctrl.SearchChanged("")
	assert.Len(t, h.ctrl.Users(), 3)
}

func TestSubmitAddsRecord(t *testing.T) {
	h := newHarness(t, model.User{ID: 3, Name: "Alice", Email: "alice@x.io"})
	ctx := context.Background()

	h.ctrl.AddRequest()
	assert.True(t, h.ctrl.State().FormOpen)
	h.ctrl.FieldChanged(model.FieldName, "Bob")
	h.ctrl.FieldChanged(model.FieldEmail, "bob@x.io")
	h.ctrl.FieldChanged(model.FieldPhone, "555")
	require.NoError(t, h.ctrl.Submit(ctx))

	list := h.store.List()
	require.Len(t, list, 2)
	added := list[1]
	assert.NotEqual(t, 3, added.ID)
	assert.Equal(t, model.User{ID: added.ID, Name: "Bob", Email: "bob@x.io", Phone: "555"}, added)
	assert.Equal(t, list, h.persisted(t))
	assert.Equal(t, MsgUserAdded, h.notes.last())

	state := h.ctrl.State()
	assert.False(t, state.FormOpen)
	assert.Equal(t, form.Draft{}, state.Draft)
	assert.Nil(t, state.EditTarget)
}

func TestSubmitValidationBlocks(t *testing.T) {
	h := newHarness(t)
	h.ctrl.AddRequest()
	h.ctrl.FieldChanged(model.FieldName, "Bob")
	h.ctrl.FieldChanged(model.FieldEmail, "not-an-email")

	err := h.ctrl.Submit(context.Background())
	assert.ErrorIs(t, err, form.ErrInvalidEmail)
	assert.False(t, Notified(err))
	state := h.ctrl.State()
	assert.True(t, state.FormOpen)
	assert.Equal(t, "Please enter a valid email address", state.Error)
	assert.Equal(t, "Bob", state.Draft.Name)
	assert.Empty(t, h.store.List())
	assert.Empty(t, h.notes.messages)

	h.ctrl.FieldChanged(model.FieldName, "")
	assert.ErrorIs(t, h.ctrl.Submit(context.Background()), form.ErrRequired)
	assert.Equal(t, "Name and Email are required", h.ctrl.State().Error)
}

func TestEditFlow(t *testing.T) {
	alice := model.User{ID: 1, Name: "Alice", Email: "alice@x.io", Phone: "1"}
	h := newHarness(t, alice, model.User{ID: 2, Name: "Bob", Email: "bob@x.io"})

	h.ctrl.EditRequest(alice)
	state := h.ctrl.State()
	require.True(t, state.Editing())
	assert.Equal(t, 1, *state.EditTarget)
	assert.Equal(t, "Alice", state.Draft.Name)
	assert.Equal(t, "alice@x.io", state.Draft.Email)

	h.ctrl.FieldChanged(model.FieldName, "Alicia")
	require.NoError(t, h.ctrl.Submit(context.Background()))

	list := h.store.List()
	require.Len(t, list, 2)
	assert.Equal(t, model.User{ID: 1, Name: "Alicia", Email: "alice@x.io", Phone: "1"}, list[0])
	assert.Equal(t, MsgUserUpdated, h.notes.last())
}

func TestEditOfRemovedRecord(t *testing.T) {
	alice := model.User{ID: 1, Name: "Alice", Email: "alice@x.io"}
	h := newHarness(t, alice)
	h.ctrl.EditRequest(alice)
	_, err := h.store.Delete(context.Background(), 1)
	require.NoError(t, err)

	err = h.ctrl.Submit(context.Background())
	assert.ErrorIs(t, err, records.ErrNotFound)
	assert.Equal(t, MsgUserNotFound, h.notes.last())
	assert.Empty(t, h.store.List())
	assert.False(t, h.ctrl.State().FormOpen)
}

func TestCancelDiscardsDraft(t *testing.T) {
	alice := model.User{ID: 1, Name: "Alice", Email: "alice@x.io"}
	h := newHarness(t, alice)
	h.ctrl.EditRequest(alice)
	h.ctrl.Cancel()

	state := h.ctrl.State()
	assert.False(t, state.FormOpen)
	assert.Nil(t, state.EditTarget)
	assert.Equal(t, form.Draft{}, state.Draft)
}

func TestDeleteRequest(t *testing.T) {
	h := newHarness(t, model.User{ID: 1, Name: "Alice"}, model.User{ID: 2, Name: "Bob"})
	ctx := context.Background()

	require.NoError(t, h.ctrl.DeleteRequest(ctx, 1))
	assert.Equal(t, MsgUserDeleted, h.notes.last())
	assert.Len(t, h.ctrl.Users(), 1)
	assert.Len(t, h.persisted(t), 1)

	err := h.ctrl.DeleteRequest(ctx, 1)
	assert.ErrorIs(t, err, records.ErrNotFound)
	assert.True(t, Notified(err))
	assert.Equal(t, MsgUserNotFound, h.notes.last())
	assert.Len(t, h.store.List(), 1)
}

func TestExportImport(t *testing.T) {
	users := []model.User{{ID: 1, Name: "Alice", Email: "alice@x.io"}, {ID: 2, Name: "Bob", Email: "bob@x.io"}}
	h := newHarness(t, users...)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.yaml")

	require.NoError(t, h.ctrl.Export(ctx, path, ""))
	assert.Equal(t, MsgExported, h.notes.last())

	require.NoError(t, h.ctrl.DeleteRequest(ctx, 1))
	require.NoError(t, h.ctrl.Import(ctx, path, ""))
	assert.Equal(t, MsgImported, h.notes.last())
	assert.Equal(t, users, h.ctrl.Users())
	assert.Equal(t, users, h.persisted(t))

	assert.Error(t, h.ctrl.Import(ctx, filepath.Join(t.TempDir(), "missing.json"), ""))
	assert.Equal(t, MsgImportFailed, h.notes.last())
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	users := []model.User{{ID: 1, Name: "Alice", Email: "alice@x.io"}}
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"blank name", `[{"id":1,"name":"Alice","email":"alice@x.io"},{"id":2,"name":"","email":"bob@x.io"}]`, form.ErrRequired},
		{"missing email", `[{"id":3,"name":"Carol"}]`, form.ErrRequired},
		{"bad email", `[{"id":4,"name":"Dave","email":"dave"}]`, form.ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, users...)
			path := filepath.Join(t.TempDir(), "users.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			err := h.ctrl.Import(context.Background(), path, "")
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, MsgImportFailed, h.notes.last())
			assert.Equal(t, users, h.ctrl.Users())
			assert.Equal(t, users, h.persisted(t))
		})
	}
}

func TestWhere(t *testing.T) {
	h := newHarness(t, model.User{ID: 1, Name: "Alice", Email: "a@x.biz"}, model.User{ID: 4, Name: "Bob", Email: "b@x.biz"})
	matched, err := h.ctrl.Where(`email endsWith ".biz" && id > 3`)
	require.NoError(t, err)
	assert.Equal(t, []model.User{{ID: 4, Name: "Bob", Email: "b@x.biz"}}, matched)

	_, err = h.ctrl.Where("id >")
	assert.Error(t, err)
}

type oneUserDirectory struct{ calls int }

func (d *oneUserDirectory) FetchAll(context.Context) ([]model.User, error) {
	d.calls++
	return []model.User{{ID: 1, Name: "A", Email: "a@x.com", Phone: "1"}}, nil
}

func TestStartupSeedsEveryCopy(t *testing.T) {
	h := newHarness(t)
	directory := &oneUserDirectory{}
	sync := reconcile.NewSynchronizer(h.cache, directory, h.store, h.notes, "users", h.logger)

	_, err := sync.Run(context.Background())
	require.NoError(t, err)

	want := []model.User{{ID: 1, Name: "A", Email: "a@x.com", Phone: "1"}}
	assert.Equal(t, 1, directory.calls)
	assert.Equal(t, want, h.persisted(t))
	assert.Equal(t, want, h.store.List())
	assert.Equal(t, want, h.ctrl.State().Users)
}

func TestFailureMessages(t *testing.T) {
	assert.Equal(t, reconcile.MsgFetchFailed, MsgFetchFailed)
	assert.True(t, IsFailure(MsgFetchFailed))
	assert.False(t, IsFailure(MsgUserAdded))
}
