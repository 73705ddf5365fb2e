package ui

import "github.com/charmbracelet/lipgloss"

// Color is an ANSI 256-color code.
type Color = lipgloss.Color

const (
	ColorGray        Color = "245"
	ColorDarkGray    Color = "240"
	ColorWhite       Color = "255"
	ColorLightRed    Color = "210"
	ColorRed         Color = "196"
	ColorLightGreen  Color = "114"
	ColorLightYellow Color = "222"
	ColorLightBlue   Color = "111"
	ColorLightOrange Color = "216"
	ColorLightPurple Color = "141"
)
