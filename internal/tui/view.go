package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/morse"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/tui/components"
)

// View renders header, device row, tab bar, body and footer.
func (m Model) View() string {
	if m.layout.TooSmall {
		return fmt.Sprintf("Terminal too small (%d×%d). Need at least %d×%d.",
			m.width, m.height, MinWidth, MinHeight)
	}

	var body string
	if m.tabs.Active() == tabTable {
		body = renderTable(m.layout.Body.Width, m.layout.Body.Height)
	} else {
		body = m.log.View()
	}

	return strings.Join([]string{
		m.renderHeader(),
		m.renderDevice(),
		m.tabs.View(),
		body,
		m.renderFooter(),
	}, "\n")
}

func (m Model) renderHeader() string {
	pending := "—"
	if m.pending != 0 {
		pending = string(m.pending)
	}
	parts := []string{
		"📟 MorseTap",
		fmt.Sprintf("state: %s", m.state.Label()),
		fmt.Sprintf("pending: %s", pending),
		fmt.Sprintf("sent: %d", m.sent),
	}
	return m.theme.headerStyle.Width(m.width).Render(strings.Join(parts, "  │  "))
}

func (m Model) renderDevice() string {
	lcd := components.LCD{
		Lines:     m.screen.Lines,
		On:        m.screen.On,
		Backlight: m.screen.Backlight,
	}.View(m.theme.Accent())

	lamp := lampOff.Render("○ TX")
	if m.buzzing {
		lamp = lampOn.Render("● TX")
	}
	code := string(m.code)
	if code == "" {
		code = "—"
	}
	left := lipgloss.JoinVertical(lipgloss.Left,
		lcd,
		"",
		lamp+"   "+m.theme.composeStyle.Render(code),
	)

	grid := m.theme.border.Padding(0, 1).Render(components.KeyGrid{Active: m.lastKey}.View(m.theme.Accent()))
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", grid)
	return lipgloss.NewStyle().Height(m.layout.Device.Height).MaxHeight(m.layout.Device.Height).Render(row)
}

func (m Model) renderFooter() string {
	left := "0-9 * / + - tap · enter send · ⌫ clear"
	right := "tab log/table · f follow · q quit"

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return footerStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderTable lays the code table out in as many columns as fit.
func renderTable(width, height int) string {
	const cellW = 10 // "A  .-    " plus gap
	entries := morse.Table()
	if height < 1 {
		height = 1
	}
	cols := width / cellW
	if cols < 1 {
		cols = 1
	}
	rows := (len(entries) + cols - 1) / cols
	if rows < height {
		rows = height
	}

	lines := make([]string, rows)
	for i, e := range entries {
		r := i % rows
		lines[r] += fmt.Sprintf("%c  %-*s", e.Char, cellW-3, e.Code)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
