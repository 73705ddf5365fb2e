package tui

import (
	"github.com/charmbracelet/lipgloss"

	"userdesk/local-app/internal/ui"
)

// Theme holds the colors of the TUI. Values are ANSI 256-color codes shared
// with the command-line renderer.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	SearchText       lipgloss.Color

	ErrorText   lipgloss.Color
	SuccessText lipgloss.Color
	WarningText lipgloss.Color
}

// DefaultTheme is the built-in dark palette.
var DefaultTheme = Theme{
	NormalText:         ui.ColorWhite,
	FaintText:          ui.ColorGray,
	SelectedBackground: "237",
	SelectedForeground: ui.ColorWhite,
	HeaderForeground:   ui.ColorLightBlue,
	BorderColor:        ui.ColorDarkGray,
	HelpText:           ui.ColorDarkGray,
	SearchText:         ui.ColorLightPurple,
	ErrorText:          ui.ColorLightOrange,
	SuccessText:        ui.ColorLightGreen,
	WarningText:        ui.ColorLightYellow,
}
