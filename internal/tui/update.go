package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/app"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/keypad"
)

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd

	case eventMsg:
		return m.handleEvent(app.Event(msg))

	case tickMsg:
		m.now = time.Time(msg)
		m.refreshDevice()
		return m, tickCmd()

	case doneMsg:
		m.done = true
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if IsGlobalKey(key) {
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.tabs = m.tabs.Next()
		case "f":
			m.log = m.log.ToggleFollow()
		default:
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	k, ok := KeypadKey(msg)
	if !ok || m.dev == nil {
		return m, nil
	}
	if m.dev.Press(k) {
		m.lastKey = k
		m.keyAt = m.now
	}
	return m, nil
}

func (m Model) handleEvent(e app.Event) (tea.Model, tea.Cmd) {
	switch e.Kind {
	case app.EventState:
		m.state = e.To
		if e.To == app.StateIdle {
			m.pending = 0
			m.code = ""
		}
	case app.EventCompose:
		m.pending = e.Char
	case app.EventSend:
		m.code = e.Code
	case app.EventSent:
		m.sent++
	}

	m.log = m.log.AppendLine(m.theme.RenderEvent(e, m.width))
	m.refreshDevice()
	return m, waitForEvent(m.events)
}

func (m *Model) refreshDevice() {
	if m.dev != nil {
		m.screen = m.dev.Screen()
		m.buzzing = m.dev.Buzzing()
	}
	if m.lastKey != keypad.NoKey && m.now.Sub(m.keyAt) > KeyHighlight {
		m.lastKey = keypad.NoKey
	}
}
