// Package tui is the bubbletea simulator: it shows the emulated display, the
// keypad and the buzzer, forwards terminal keys to the simulated matrix, and
// logs application events.
package tui

import "github.com/charmbracelet/lipgloss"

// defaultAccentColor is the default accent color (amber).
const defaultAccentColor = "#F4A300"

var (
	colorWhite  = lipgloss.Color("#FAFAFA")
	colorGray   = lipgloss.Color("#888888")
	colorBlue   = lipgloss.Color("#5B9BD5")
	colorGreen  = lipgloss.Color("#6BCB77")
	colorYellow = lipgloss.Color("#FFD93D")
	colorRed    = lipgloss.Color("#FF6B6B")
	colorOrange = lipgloss.Color("#FFA54F")
)

var (
	footerStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	timestampStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	keyStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	sendStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	stateStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorOrange)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	lampOff = lipgloss.NewStyle().
		Foreground(colorGray)

	lampOn = lipgloss.NewStyle().
		Foreground(colorRed).
		Bold(true)
)
