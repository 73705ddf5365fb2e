// Package ui renders command-line output for userdesk.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// UI writes styled messages to a writer. Styling is skipped when color is off.
type UI struct {
	writer   io.Writer
	useColor bool
}

// NewUI creates a UI writing to w.
func NewUI(w io.Writer, useColor bool) *UI {
	return &UI{writer: w, useColor: useColor}
}

func (u *UI) style(message string, style lipgloss.Style) string {
	if !u.useColor {
		return message
	}
	return style.Render(message)
}

func (u *UI) colorize(message string, color Color) string {
	return u.style(message, lipgloss.NewStyle().Foreground(color))
}

func (u *UI) Print(message string) {
	fmt.Fprint(u.writer, message)
}

func (u *UI) Printf(format string, args ...interface{}) {
	fmt.Fprintf(u.writer, format, args...)
}

func (u *UI) Println(message string) {
	fmt.Fprintln(u.writer, message)
}

// Message prints a formatted line.
func (u *UI) Message(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	u.Print(line)
}

func (u *UI) PrintColored(message string, color Color) {
	u.Print(u.colorize(message, color))
}

func (u *UI) PrintlnColored(message string, color Color) {
	u.Println(u.colorize(message, color))
}

func (u *UI) Error(message string) {
	u.Println(u.colorize("!", ColorRed) + " " + u.colorize(message, ColorLightOrange))
}

func (u *UI) Success(message string) {
	u.PrintlnColored(message, ColorLightGreen)
}

func (u *UI) Warning(message string) {
	u.Println(u.colorize("?", ColorLightRed) + " " + u.colorize(message, ColorLightYellow))
}

func (u *UI) Info(message string) {
	u.PrintlnColored(message, ColorGray)
}

// GetPromptString builds the prompt showing the record count and the active search term.
func (u *UI) GetPromptString(count int, term string) string {
	var promptBuilder strings.Builder
	promptBuilder.WriteString(u.colorize(fmt.Sprintf("users(%d)", count), ColorLightBlue))
	if term != "" {
		promptBuilder.WriteString(u.colorize(" ~ ", ColorWhite))
		promptBuilder.WriteString(u.colorize(term, ColorLightPurple))
	}
	promptBuilder.WriteString(u.colorize(" > ", ColorLightGreen))
	return promptBuilder.String()
}
