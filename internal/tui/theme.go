package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/app"
)

// Theme holds the accent-color-derived styles.
type Theme struct {
	accent       lipgloss.Color
	headerStyle  lipgloss.Style
	border       lipgloss.Style
	composeStyle lipgloss.Style
}

// NewTheme creates a Theme from a hex accent color string (e.g. "#F4A300").
// If accentColor is empty, the default accent color is used.
func NewTheme(accentColor string) Theme {
	color := defaultAccentColor
	if accentColor != "" {
		color = accentColor
	}
	c := lipgloss.Color(color)
	return Theme{
		accent: c,
		headerStyle: lipgloss.NewStyle().
			Background(c).
			Foreground(lipgloss.Color("#1A1A1A")).
			Bold(true),
		border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c),
		composeStyle: lipgloss.NewStyle().
			Foreground(c),
	}
}

// Accent returns the accent color.
func (t Theme) Accent() lipgloss.Color { return t.accent }

// RenderEvent renders an app.Event as a single terminal line no wider than width.
func (t Theme) RenderEvent(e app.Event, width int) string {
	ts := timestampStyle.Render(fmt.Sprintf("[%s]", e.Timestamp.Format("15:04:05")))

	maxText := width - 14
	if maxText < 20 {
		maxText = 20
	}
	msg := truncate(singleLine(e.Message), maxText)

	var body string
	switch e.Kind {
	case app.EventKey:
		body = keyStyle.Render("⌨ " + msg)
	case app.EventState:
		body = stateStyle.Render("→ " + msg)
	case app.EventCompose:
		body = t.composeStyle.Render("✎ " + msg)
	case app.EventSend:
		body = sendStyle.Render("📡 " + msg)
	case app.EventSent:
		body = sendStyle.Bold(true).Render("✅ " + msg)
	case app.EventClear:
		body = infoStyle.Render("⌫ " + msg)
	case app.EventUnsupported, app.EventKeyStuck, app.EventBusTimeout:
		body = warnStyle.Render("⚠ " + msg)
	case app.EventError:
		body = errorStyle.Render("❌ " + msg)
	case app.EventStopped:
		body = errorStyle.Render("⏹ " + msg)
	default:
		body = infoStyle.Render(msg)
	}
	return ts + "  " + body
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
