package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/app"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal/sim"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/keypad"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/morse"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/tui/components"
)

// Refresh timing.
const (
	TickInterval = 50 * time.Millisecond
	KeyHighlight = 250 * time.Millisecond
)

// Tabs in the body panel.
const (
	tabLog = iota
	tabTable
)

// Model is the root bubbletea model for the simulator.
type Model struct {
	events <-chan app.Event
	dev    Device

	// Panels
	log  components.LogView
	tabs components.TabBar

	// Layout
	layout Layout
	theme  Theme
	width  int
	height int

	// Device state, refreshed every tick
	screen  sim.Screen
	buzzing bool
	lastKey keypad.Key
	keyAt   time.Time
	now     time.Time

	// Application state, tracked from events
	state   app.State
	pending rune
	code    morse.Code
	sent    int

	done bool
}

// New creates the simulator model. Events are read from events until it is
// closed; dev is polled every TickInterval.
func New(events <-chan app.Event, dev Device, accentColor string) Model {
	th := NewTheme(accentColor)
	m := Model{
		events: events,
		dev:    dev,
		log:    components.NewLogView(80, 1),
		tabs:   components.NewTabBar(th.Accent(), "Log", "Table"),
		theme:  th,
		now:    time.Now(),
	}
	return m.resize(80, 24)
}

// Init starts the event listener and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickCmd())
}

// Done reports whether the event channel has closed.
func (m Model) Done() bool { return m.done }

// tickCmd schedules the next refresh.
func tickCmd() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent blocks on the event channel and returns the next message.
func waitForEvent(ch <-chan app.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return doneMsg{}
		}
		return eventMsg(e)
	}
}

func (m Model) resize(w, h int) Model {
	m.width, m.height = w, h
	m.layout = Calculate(w, h)
	if m.layout.TooSmall {
		m.log = m.log.SetSize(w, 1)
		return m
	}
	m.log = m.log.SetSize(m.layout.Body.Width, m.layout.Body.Height)
	return m
}
