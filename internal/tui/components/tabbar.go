// Package components provides reusable pieces of the simulator UI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var tabInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

// TabBar renders a row of labelled tabs with the active one highlighted in
// the accent color.
type TabBar struct {
	tabs   []string
	active int
	accent lipgloss.Style
}

// NewTabBar creates a TabBar with the given titles. The first tab is active.
func NewTabBar(accent lipgloss.Color, tabs ...string) TabBar {
	return TabBar{
		tabs:   tabs,
		accent: lipgloss.NewStyle().Bold(true).Foreground(accent),
	}
}

// Active returns the index of the active tab.
func (t TabBar) Active() int {
	return t.active
}

// Next returns a TabBar with the next tab active (wraps around).
func (t TabBar) Next() TabBar {
	if len(t.tabs) == 0 {
		return t
	}
	t.active = (t.active + 1) % len(t.tabs)
	return t
}

// View renders the tabs separated by " │ ".
func (t TabBar) View() string {
	parts := make([]string, len(t.tabs))
	for i, label := range t.tabs {
		if i == t.active {
			parts[i] = t.accent.Render(label)
		} else {
			parts[i] = tabInactiveStyle.Render(label)
		}
	}
	return strings.Join(parts, "  │  ")
}
