package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LCDCols is the character width of the rendered panel.
const LCDCols = 16

var (
	lcdLit   = lipgloss.NewStyle().Background(lipgloss.Color("#9ACD32")).Foreground(lipgloss.Color("#1A1A1A"))
	lcdDark  = lipgloss.NewStyle().Background(lipgloss.Color("#2E3B1F")).Foreground(lipgloss.Color("#4F5F3A"))
	lcdFrame = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// LCD renders a character display. Rows longer than LCDCols are cut.
type LCD struct {
	Lines     [2]string
	On        bool // display enabled; when false the glass shows no text
	Backlight bool
}

// View renders the panel with its frame in color.
func (l LCD) View(frame lipgloss.Color) string {
	style := lcdDark
	if l.Backlight {
		style = lcdLit
	}
	rows := make([]string, len(l.Lines))
	for i, line := range l.Lines {
		if !l.On {
			line = ""
		}
		rows[i] = style.Render(fit(line, LCDCols))
	}
	return lcdFrame.BorderForeground(frame).Render(strings.Join(rows, "\n"))
}

// fit pads or cuts s to exactly n runes.
func fit(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s + strings.Repeat(" ", n-len(r))
}
