package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"userdesk/local-app/internal/app"
	"userdesk/local-app/internal/model"
)

// UserTable prints users as a bordered table.
func (u *UI) UserTable(users []model.User) {
	if len(users) == 0 {
		u.Info("No users found.")
		return
	}

	rows := make([][]string, 0, len(users))
	for _, user := range users {
		rows = append(rows, []string{strconv.Itoa(user.ID), user.Name, user.Email, user.Phone})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "Email", "Phone").
		Rows(rows...)
	if u.useColor {
		header := lipgloss.NewStyle().Bold(true).Foreground(ColorWhite).Padding(0, 1)
		cell := lipgloss.NewStyle().Padding(0, 1)
		faint := cell.Foreground(ColorGray)
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(ColorDarkGray)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return header
				case col == 0:
					return faint
				default:
					return cell
				}
			})
	}
	u.Println(t.String())
	u.Info(strconv.Itoa(len(users)) + " user(s)")
}

// UserDetail prints every field of a single user.
func (u *UI) UserDetail(user model.User) {
	u.Printf("%-6s %s\n", u.colorize("ID", ColorGray), strconv.Itoa(user.ID))
	for _, f := range model.UserFields {
		u.Printf("%-6s %s\n", u.colorize(f.Label(), ColorGray), user.Value(f))
	}
}

// Notify prints a notification, styled as an error for failure messages.
func (u *UI) Notify(message string) {
	if app.IsFailure(message) {
		u.Error(message)
		return
	}
	u.Success(message)
}
