// Package tui is the full-screen terminal frontend of userdesk.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"userdesk/local-app/internal/app"
	"userdesk/local-app/internal/model"
)

// FocusRegion identifies which part of the screen receives keystrokes.
type FocusRegion int

const (
	// FocusList means navigation keys move the list cursor.
	FocusList FocusRegion = iota
	// FocusSearch means keystrokes edit the search box.
	FocusSearch
	// FocusForm means the add/edit form is open.
	FocusForm
	// FocusConfirm means a delete is waiting for y/n.
	FocusConfirm
)

// toastDuration is how long a notification stays in the status line.
const toastDuration = 3 * time.Second

// formFieldCount is len(model.UserFields).
const formFieldCount = 3

// StartupFunc performs the startup synchronization. It runs off the
// message loop so the list stays interactive while the fetch is pending.
type StartupFunc func(context.Context) error

// syncDoneMsg is sent when the startup synchronization returns.
type syncDoneMsg struct {
	err error
}

// toastFadeMsg clears the toast it was scheduled for. A newer toast
// has a higher sequence number and survives.
type toastFadeMsg struct {
	seq int
}

// Model is the bubbletea model of the user directory.
type Model struct {
	ctx        context.Context
	controller *app.Controller
	notifier   *Notifier
	startup    StartupFunc
	keys       KeyMap
	theme      Theme

	focusRegion FocusRegion
	cursor      int
	offset      int
	loading     bool

	search     textinput.Model
	fields     [formFieldCount]textinput.Model
	fieldFocus int

	deleteTarget model.User

	toast    string
	toastSeq int

	width  int
	height int
}

// NewModel creates the TUI m. notifier must be the Notifier the
// controller and the synchronizer report to; startup may be nil.
func NewModel(ctx context.Context, controller *app.Controller, notifier *Notifier, startup StartupFunc) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search by name"

	var fields [formFieldCount]textinput.Model
	for i, field := range model.UserFields {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = field.Label()
		input.CharLimit = 256
		fields[i] = input
	}

	return Model{
		ctx:        ctx,
		controller: controller,
		notifier:   notifier,
		startup:    startup,
		keys:       DefaultKeyMap,
		theme:      DefaultTheme,
		loading:    startup != nil,
		search:     search,
		fields:     fields,
	}
}

// Init implements tea.Model. Starts the synchronization and the
// notification listener.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.notifier != nil {
		cmds = append(cmds, listenForNotification(m.notifier.messages))
	}
	if m.startup != nil {
		ctx, startup := m.ctx, m.startup
		cmds = append(cmds, func() tea.Msg {
			return syncDoneMsg{err: startup(ctx)}
		})
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch m.focusRegion {
		case FocusSearch:
			return m.handleSearchKeys(message)
		case FocusForm:
			return m.handleFormKeys(message)
		case FocusConfirm:
			return m.handleConfirmKeys(message)
		default:
			return m.handleListKeys(message)
		}

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.search.Width = message.Width - 4
		m.clampCursor()

	case syncDoneMsg:
		m.loading = false
		m.clampCursor()

	case notificationMsg:
		m.toastSeq++
		m.toast = message.text
		seq := m.toastSeq
		fade := tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return toastFadeMsg{seq: seq}
		})
		if m.notifier == nil {
			return m, fade
		}
		return m, tea.Batch(listenForNotification(m.notifier.messages), fade)

	case toastFadeMsg:
		if message.seq == m.toastSeq {
			m.toast = ""
		}

	default:
		// Cursor blink and other input internals.
		var cmd tea.Cmd
		switch m.focusRegion {
		case FocusSearch:
			m.search, cmd = m.search.Update(message)
		case FocusForm:
			m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(message)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	users := m.controller.Users()

	switch {
	case key.Matches(message, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(message, m.keys.Up):
		m.moveCursor(-1, len(users))

	case key.Matches(message, m.keys.Down):
		m.moveCursor(1, len(users))

	case key.Matches(message, m.keys.Home):
		m.moveCursor(-len(users), len(users))

	case key.Matches(message, m.keys.End):
		m.moveCursor(len(users), len(users))

	case key.Matches(message, m.keys.Search):
		m.focusRegion = FocusSearch
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(message, m.keys.SearchClear):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.controller.SearchChanged("")
			m.cursor, m.offset = 0, 0
		}

	case key.Matches(message, m.keys.Add):
		m.controller.AddRequest()
		cmd := m.openForm(m.controller.State().Draft)
		return m, cmd

	case key.Matches(message, m.keys.Edit):
		if selected, ok := m.selected(users); ok {
			m.controller.EditRequest(selected)
			cmd := m.openForm(selected)
			return m, cmd
		}

	case key.Matches(message, m.keys.Delete):
		if selected, ok := m.selected(users); ok {
			m.deleteTarget = selected
			m.focusRegion = FocusConfirm
		}
	}
	return m, nil
}

func (m Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(message, m.keys.Submit):
		m.search.Blur()
		m.focusRegion = FocusList
		return m, nil

	case key.Matches(message, m.keys.Cancel):
		m.search.SetValue("")
		m.search.Blur()
		m.controller.SearchChanged("")
		m.focusRegion = FocusList
		m.cursor, m.offset = 0, 0
		return m, nil
	}

	var cmd tea.Cmd
	previous := m.search.Value()
	m.search, cmd = m.search.Update(message)
	if value := m.search.Value(); value != previous {
		m.controller.SearchChanged(value)
		m.cursor, m.offset = 0, 0
	}
	return m, cmd
}

func (m Model) handleFormKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(message, m.keys.Cancel):
		m.controller.Cancel()
		m.closeForm()
		return m, nil

	case key.Matches(message, m.keys.Submit):
		// Store failures arrive as notifications. A validation error
		// keeps the form open and shows in the error line.
		_ = m.controller.Submit(m.ctx)
		if !m.controller.State().FormOpen {
			m.closeForm()
		}
		return m, nil

	case key.Matches(message, m.keys.NextField):
		cmd := m.focusField(m.fieldFocus + 1)
		return m, cmd

	case key.Matches(message, m.keys.PrevField):
		cmd := m.focusField(m.fieldFocus - 1)
		return m, cmd
	}

	var cmd tea.Cmd
	field := m.fieldFocus
	m.fields[field], cmd = m.fields[field].Update(message)
	m.controller.FieldChanged(model.UserFields[field], m.fields[field].Value())
	return m, cmd
}

func (m Model) handleConfirmKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if key.Matches(message, m.keys.Confirm) {
		// The outcome is reported through the notifier.
		_ = m.controller.DeleteRequest(m.ctx, m.deleteTarget.ID)
	}
	m.deleteTarget = model.User{}
	m.focusRegion = FocusList
	m.clampCursor()
	return m, nil
}

// openForm loads u into the inputs and focuses the first one.
func (m *Model) openForm(u model.User) tea.Cmd {
	for i, field := range model.UserFields {
		m.fields[i].SetValue(u.Value(field))
		m.fields[i].CursorEnd()
		m.fields[i].Blur()
	}
	m.focusRegion = FocusForm
	m.fieldFocus = 0
	return m.fields[0].Focus()
}

func (m *Model) closeForm() {
	for i := range m.fields {
		m.fields[i].Blur()
	}
	m.focusRegion = FocusList
	m.clampCursor()
}

// focusField moves input focus, wrapping around at either end.
func (m *Model) focusField(index int) tea.Cmd {
	index = (index + formFieldCount) % formFieldCount
	m.fields[m.fieldFocus].Blur()
	m.fieldFocus = index
	return m.fields[index].Focus()
}

func (m Model) selected(users []model.User) (model.User, bool) {
	if m.cursor < 0 || m.cursor >= len(users) {
		return model.User{}, false
	}
	return users[m.cursor], true
}

func (m *Model) moveCursor(delta, count int) {
	m.cursor += delta
	m.clampTo(count)
}

// clampCursor keeps the cursor on an existing row after the list changed.
func (m *Model) clampCursor() {
	m.clampTo(len(m.controller.Users()))
}

func (m *Model) clampTo(count int) {
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if visible > 0 && m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}
