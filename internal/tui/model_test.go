package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdesk/local-app/internal/app"
	"userdesk/local-app/internal/event"
	"userdesk/local-app/internal/form"
	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
	"userdesk/local-app/internal/records"
	"userdesk/local-app/internal/storage"
)

var testUsers = []model.User{
	{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz", Phone: "1-770-736-8031"},
	{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv", Phone: "010-692-6593"},
	{ID: 3, Name: "Clementine Bauch", Email: "Nathan@yesenia.net", Phone: "1-463-123-4447"},
}

type fixture struct {
	store      *records.Store
	controller *app.Controller
	notifier   *Notifier
}

func newFixture(t *testing.T, seed ...model.User) fixture {
	t.Helper()
	logger := log.NewNopLogger()
	events := event.NewEventManager(logger)
	store := records.NewStore(storage.NewUserCache(storage.NewMemoryStore(), logger), "users", events, logger)
	require.NoError(t, store.ReplaceAll(context.Background(), seed))
	notifier := NewNotifier()
	return fixture{
		store:      store,
		controller: app.NewController(store, events, notifier, logger),
		notifier:   notifier,
	}
}

func (f fixture) model() Model {
	return NewModel(context.Background(), f.controller, f.notifier, nil)
}

// nextNotification returns the oldest queued notification, or "".
func (f fixture) nextNotification() string {
	select {
	case message := <-f.notifier.messages:
		return message
	default:
		return ""
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, messages ...tea.Msg) Model {
	t.Helper()
	for _, message := range messages {
		updated, _ := m.Update(message)
		var ok bool
		m, ok = updated.(Model)
		require.True(t, ok)
	}
	return m
}

func TestListNavigation(t *testing.T) {
	f := newFixture(t, testUsers...)
	m := f.model()

	m = send(t, m, runes("j"), runes("j"), runes("k"))
	assert.Equal(t, 1, m.cursor)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.cursor, "cursor stops at the last row")

	m = send(t, m, runes("g"))
	assert.Equal(t, 0, m.cursor)
	m = send(t, m, runes("G"))
	assert.Equal(t, 2, m.cursor)
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	f := newFixture(t, testUsers...)
	m := send(t, f.model(), tea.WindowSizeMsg{Width: 80, Height: chromeLines + 1})

	m = send(t, m, runes("j"), runes("j"))
	assert.Equal(t, 2, m.cursor)
	assert.Equal(t, 2, m.offset)
	assert.Contains(t, m.View(), "Clementine Bauch")
	assert.NotContains(t, m.View(), "Leanne Graham")
}

func TestLiveSearch(t *testing.T) {
	f := newFixture(t, testUsers...)
	m := send(t, f.model(), runes("/"))
	require.Equal(t, FocusSearch, m.focusRegion)

	m = send(t, m, runes("E"), runes("rv"))
	state := f.controller.State()
	assert.Equal(t, "Erv", state.SearchTerm)
	require.Len(t, state.Users, 1)
	assert.Equal(t, "Ervin Howell", state.Users[0].Name)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, FocusList, m.focusRegion)
	assert.Equal(t, "Erv", f.controller.State().SearchTerm, "enter keeps the term")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", f.controller.State().SearchTerm)
	assert.Len(t, f.controller.Users(), 3)
}

func TestAddUser(t *testing.T) {
	f := newFixture(t, testUsers...)
	m := send(t, f.model(), runes("a"))
	require.Equal(t, FocusForm, m.focusRegion)
	assert.Contains(t, m.View(), "Add user")

	m = send(t, m,
		runes("Ada Lovelace"),
		tea.KeyMsg{Type: tea.KeyTab},
		runes("ada@example.com"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	assert.Equal(t, FocusList, m.focusRegion)
	users := f.store.List()
	require.Len(t, users, 4)
	assert.Equal(t, model.User{ID: 4, Name: "Ada Lovelace", Email: "ada@example.com"}, users[3])
	assert.Equal(t, app.MsgUserAdded, f.nextNotification())
}

func TestFormValidationKeepsFormOpen(t *testing.T) {
	f := newFixture(t, testUsers...)
	m := send(t, f.model(),
		runes("a"),
		runes("Ada"),
		tea.KeyMsg{Type: tea.KeyTab},
		runes("not-an-email"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	assert.Equal(t, FocusForm, m.focusRegion)
	assert.Equal(t, form.ErrInvalidEmail.Error(), f.controller.State().Error)
	assert.Contains(t, m.View(), form.ErrInvalidEmail.Error())
	assert.Len(t, f.store.List(), 3)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, FocusList, m.focusRegion)
	assert.False(t, f.controller.State().FormOpen)
	assert.Equal(t, "", f.nextNotification())
}

func TestEditUser(t *testing.T) {
	f := newFixture(t, testUsers...)
	m := send(t, f.model(), runes("j"), runes("e"))
	require.Equal(t, FocusForm, m.focusRegion)
	assert.Equal(t, "Ervin Howell", m.fields[0].Value())
	assert.Contains(t, m.View(), "Edit user 2")

	m = send(t, m,
		tea.KeyMsg{Type: tea.KeyShiftTab},
		runes(" x1"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	user, ok := f.store.Get(2)
	require.True(t, ok)
	assert.Equal(t, "010-692-6593 x1", user.Phone)
	assert.Equal(t, "Ervin Howell", user.Name)
	assert.Len(t, f.store.List(), 3)
	assert.Equal(t, app.MsgUserUpdated, f.nextNotification())
	assert.Equal(t, FocusList, m.focusRegion)
}

func TestDeleteConfirmation(t *testing.T) {
	f := newFixture(t, testUsers...)
	m := send(t, f.model(), runes("d"))
	require.Equal(t, FocusConfirm, m.focusRegion)
	assert.Contains(t, m.View(), app.MsgConfirmDelete)

	m = send(t, m, runes("n"))
	assert.Equal(t, FocusList, m.focusRegion)
	assert.Len(t, f.store.List(), 3)

	m = send(t, m, runes("G"), runes("d"), runes("y"))
	assert.Len(t, f.store.List(), 2)
	assert.Equal(t, app.MsgUserDeleted, f.nextNotification())
	assert.Equal(t, 1, m.cursor, "cursor moves onto the new last row")
}

func TestToastFades(t *testing.T) {
	f := newFixture(t, testUsers...)
	m := send(t, f.model(), notificationMsg{text: app.MsgFetchFailed})
	assert.Contains(t, m.View(), app.MsgFetchFailed)

	m = send(t, m, notificationMsg{text: app.MsgUserAdded})
	m = send(t, m, toastFadeMsg{seq: 1})
	assert.Contains(t, m.View(), app.MsgUserAdded, "a stale fade leaves the newer toast")

	m = send(t, m, toastFadeMsg{seq: 2})
	assert.NotContains(t, m.View(), app.MsgUserAdded)
}

func TestStartupRunsAsCommand(t *testing.T) {
	f := newFixture(t)
	startup := func(ctx context.Context) error {
		return f.store.ReplaceAll(ctx, testUsers[:1])
	}
	m := NewModel(context.Background(), f.controller, nil, startup)
	assert.Contains(t, m.View(), "Loading users...")

	cmd := m.Init()
	require.NotNil(t, cmd)
	message := cmd()
	if batch, ok := message.(tea.BatchMsg); ok {
		require.Len(t, batch, 1)
		message = batch[0]()
	}
	require.IsType(t, syncDoneMsg{}, message)

	m = send(t, m, message)
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "Leanne Graham")
	assert.NotContains(t, m.View(), "Loading users...")
}

func TestQuit(t *testing.T) {
	f := newFixture(t, testUsers...)
	_, cmd := f.model().Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestCellTruncates(t *testing.T) {
	assert.Equal(t, "abc  ", cell("abc", 5))
	assert.Equal(t, "abcd…", cell("abcdefgh", 5))
}
