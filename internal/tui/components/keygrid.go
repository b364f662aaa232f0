package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/keypad"
)

var (
	keyIdle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	keyLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// KeyGrid renders the 4x4 keypad with the multi-tap letters under each digit.
type KeyGrid struct {
	Active keypad.Key // highlighted key; NoKey for none
}

// View renders the grid, highlighting Active in the accent color.
func (g KeyGrid) View(accent lipgloss.Color) string {
	hot := lipgloss.NewStyle().Bold(true).Reverse(true).Foreground(accent)

	var rows []string
	for _, row := range keypad.Layout {
		var keys, labels []string
		for _, k := range row {
			cell := " " + k.String() + " "
			if k == g.Active {
				keys = append(keys, hot.Render(cell))
			} else {
				keys = append(keys, keyIdle.Render(cell))
			}
			labels = append(labels, keyLabel.Render(fit(letters(k), 4)))
		}
		rows = append(rows, strings.Join(keys, "  "), strings.Join(labels, " "))
	}
	return strings.Join(rows, "\n")
}

// letters returns the alphabetic part of a key's tap cycle.
func letters(k keypad.Key) string {
	c := keypad.Cycle(k)
	if len(c) <= 1 {
		return ""
	}
	return strings.TrimRight(c, "0123456789")
}
