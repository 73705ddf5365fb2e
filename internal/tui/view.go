package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"userdesk/local-app/internal/app"
	"userdesk/local-app/internal/model"
)

const (
	defaultWidth = 80

	// chromeLines counts the lines around the list: header, search,
	// column header, status and help.
	chromeLines = 5

	idColumnWidth = 4
	columnGap     = "  "
)

// View implements tea.Model.
func (m Model) View() string {
	state := m.controller.State()

	var sections []string
	sections = append(sections, m.renderHeader(state))
	sections = append(sections, m.renderSearch())
	if m.focusRegion == FocusForm {
		sections = append(sections, m.renderForm(state))
	} else {
		sections = append(sections, m.renderList(state.Users))
	}
	sections = append(sections, m.renderStatus())
	sections = append(sections, m.renderHelp())
	return strings.Join(sections, "\n")
}

func (m Model) viewWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

// visibleRows is the number of list rows that fit. Zero means unbounded.
func (m Model) visibleRows() int {
	if m.height <= 0 {
		return 0
	}
	return max(m.height-chromeLines, 1)
}

func (m Model) renderHeader(state app.ViewState) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground).Render("userdesk")
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	count := fmt.Sprintf("%d user(s)", len(state.Users))
	if state.SearchTerm != "" {
		count += " matching " + lipgloss.NewStyle().Foreground(m.theme.SearchText).Render(state.SearchTerm)
	}
	header := title + faint.Render("  ·  ") + count
	if m.loading {
		header += faint.Render("  ·  Loading users...")
	}
	return header
}

func (m Model) renderSearch() string {
	if m.focusRegion == FocusSearch || m.search.Value() != "" {
		return m.search.View()
	}
	return lipgloss.NewStyle().Foreground(m.theme.HelpText).Render("/ search by name")
}

// columnWidths splits the row width between name, email and phone.
func (m Model) columnWidths() (name, email, phone int) {
	rest := m.viewWidth() - idColumnWidth - 3*len(columnGap) - 2
	rest = max(rest, 30)
	name = rest * 3 / 10
	email = rest * 4 / 10
	phone = rest - name - email
	return name, email, phone
}

// cell truncates s to width and pads it to exactly width columns.
func cell(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func (m Model) renderRow(id, name, email, phone string) string {
	nameWidth, emailWidth, phoneWidth := m.columnWidths()
	return strings.Join([]string{
		cell(id, idColumnWidth),
		cell(name, nameWidth),
		cell(email, emailWidth),
		cell(phone, phoneWidth),
	}, columnGap)
}

func (m Model) renderList(users []model.User) string {
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	lines := []string{faint.Render("  " + m.renderRow("ID", "Name", "Email", "Phone"))}

	if len(users) == 0 {
		empty := "No users found."
		if m.loading {
			empty = "Loading users..."
		}
		return strings.Join(append(lines, faint.Render("  "+empty)), "\n")
	}

	end := len(users)
	if visible := m.visibleRows(); visible > 0 {
		end = min(m.offset+visible, len(users))
	}
	normal := lipgloss.NewStyle().Foreground(m.theme.NormalText)
	selected := lipgloss.NewStyle().
		Foreground(m.theme.SelectedForeground).
		Background(m.theme.SelectedBackground).
		Bold(true)
	for i := m.offset; i < end; i++ {
		user := users[i]
		row := m.renderRow(strconv.Itoa(user.ID), user.Name, user.Email, user.Phone)
		if i == m.cursor && m.focusRegion != FocusSearch {
			lines = append(lines, selected.Render("> "+row))
		} else {
			lines = append(lines, normal.Render("  "+row))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderForm(state app.ViewState) string {
	title := "Add user"
	if state.Editing() {
		title = fmt.Sprintf("Edit user %d", *state.EditTarget)
	}

	label := lipgloss.NewStyle().Width(8).Foreground(m.theme.FaintText)
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground).Render(title), ""}
	for i, field := range model.UserFields {
		marker := "  "
		if i == m.fieldFocus {
			marker = "> "
		}
		lines = append(lines, marker+label.Render(field.Label())+m.fields[i].View())
	}
	lines = append(lines, "")
	if state.Error != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.ErrorText).Render(state.Error))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(0, 1).
		Width(min(m.viewWidth()-2, 64))
	return box.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatus() string {
	if m.focusRegion == FocusConfirm {
		question := fmt.Sprintf("%s (%s) [y/N]", app.MsgConfirmDelete, m.deleteTarget.Name)
		return lipgloss.NewStyle().Foreground(m.theme.WarningText).Render(question)
	}
	if m.toast == "" {
		return ""
	}
	color := m.theme.SuccessText
	if app.IsFailure(m.toast) {
		color = m.theme.ErrorText
	}
	return lipgloss.NewStyle().Foreground(color).Render(m.toast)
}

func (m Model) renderHelp() string {
	var bindings []key.Binding
	switch m.focusRegion {
	case FocusSearch:
		bindings = []key.Binding{m.keys.Submit, m.keys.Cancel}
	case FocusForm:
		bindings = []key.Binding{m.keys.Submit, m.keys.NextField, m.keys.Cancel}
	case FocusConfirm:
		bindings = []key.Binding{m.keys.Confirm}
	default:
		bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Search, m.keys.Add, m.keys.Edit, m.keys.Delete, m.keys.Quit}
	}

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	line := ansi.Truncate(strings.Join(parts, " · "), m.viewWidth(), "…")
	return lipgloss.NewStyle().Foreground(m.theme.HelpText).Render(line)
}
