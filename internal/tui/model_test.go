package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/app"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal/sim"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/keypad"
)

type fakeDevice struct {
	screen  sim.Screen
	pressed []keypad.Key
	buzzing bool
}

func (d *fakeDevice) Screen() sim.Screen { return d.screen }
func (d *fakeDevice) Buzzing() bool      { return d.buzzing }

func (d *fakeDevice) Press(k keypad.Key) bool {
	d.pressed = append(d.pressed, k)
	return true
}

func newTestModel(t *testing.T) (Model, *fakeDevice, chan app.Event) {
	t.Helper()
	dev := &fakeDevice{}
	events := make(chan app.Event, 16)
	m := New(events, dev, "")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), dev, events
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestKeysReachDevice(t *testing.T) {
	m, dev, _ := newTestModel(t)

	for _, msg := range []tea.KeyMsg{
		runes("2"),
		runes("*"),
		{Type: tea.KeyEnter},
		{Type: tea.KeyBackspace},
		runes("c"),
		runes("x"), // not a keypad key
	} {
		m, _ = update(t, m, msg)
	}

	want := "2*=CC"
	var got strings.Builder
	for _, k := range dev.pressed {
		got.WriteString(k.String())
	}
	if got.String() != want {
		t.Errorf("pressed %q, want %q", got.String(), want)
	}
	if m.lastKey != keypad.KeyClear {
		t.Errorf("lastKey = %s, want C", m.lastKey)
	}
}

func TestQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		m, _, _ := newTestModel(t)
		_, cmd := update(t, m, key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command did not quit", key)
		}
	}
}

func TestGlobalKeysNotForwarded(t *testing.T) {
	m, dev, _ := newTestModel(t)
	m, _ = update(t, m, runes("f"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if len(dev.pressed) != 0 {
		t.Errorf("global keys reached the keypad: %v", dev.pressed)
	}
	if m.log.Following() {
		t.Error("f should toggle follow off")
	}
	if m.tabs.Active() != tabTable {
		t.Error("tab should switch to the table")
	}
}

func TestEventsTrackState(t *testing.T) {
	m, _, events := newTestModel(t)
	now := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)

	seq := []app.Event{
		{Kind: app.EventState, From: app.StateIdle, To: app.StateComposing, Message: "IDLE → COMPOSING", Timestamp: now},
		{Kind: app.EventCompose, Char: 'B', Message: "Pending B", Timestamp: now},
	}
	var cmd tea.Cmd
	for _, e := range seq {
		m, cmd = update(t, m, eventMsg(e))
	}
	if cmd == nil {
		t.Fatal("expected the model to keep listening")
	}
	if m.state != app.StateComposing || m.pending != 'B' {
		t.Errorf("state=%v pending=%q, want COMPOSING B", m.state, m.pending)
	}
	if !strings.Contains(m.View(), "pending: B") {
		t.Error("header should show the pending character")
	}

	m, _ = update(t, m, eventMsg(app.Event{Kind: app.EventSend, Char: 'B', Code: "-...", Timestamp: now}))
	if m.code != "-..." {
		t.Errorf("code = %q, want -...", m.code)
	}
	m, _ = update(t, m, eventMsg(app.Event{Kind: app.EventSent, Timestamp: now}))
	m, _ = update(t, m, eventMsg(app.Event{Kind: app.EventState, To: app.StateIdle, Timestamp: now}))

	if m.pending != 0 || m.code != "" {
		t.Errorf("idle should reset pending/code, got %q %q", m.pending, m.code)
	}
	if m.sent != 1 {
		t.Errorf("sent = %d, want 1", m.sent)
	}
	if m.log.Len() != 5 {
		t.Errorf("log has %d lines, want 5", m.log.Len())
	}

	// The next event command delivers from the channel.
	events <- app.Event{Kind: app.EventInfo, Message: "hello"}
	if msg, ok := waitForEvent(events)().(eventMsg); !ok || msg.Message != "hello" {
		t.Errorf("waitForEvent = %#v", msg)
	}
}

func TestChannelClosed(t *testing.T) {
	m, _, events := newTestModel(t)
	close(events)
	msg := waitForEvent(events)()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("got %T, want doneMsg", msg)
	}
	m, _ = update(t, m, msg)
	if !m.Done() {
		t.Error("Done = false after channel closed")
	}
}

func TestTickRefreshesDevice(t *testing.T) {
	m, dev, _ := newTestModel(t)
	dev.screen = sim.Screen{Lines: [2]string{"Char: K", ""}, On: true, Backlight: true}
	dev.buzzing = true

	m, cmd := update(t, m, tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.screen.Lines[0] != "Char: K" || !m.buzzing {
		t.Errorf("screen=%q buzzing=%v", m.screen.Lines, m.buzzing)
	}
	view := m.View()
	if !strings.Contains(view, "Char: K") {
		t.Error("view should show the display contents")
	}
	if !strings.Contains(view, "● TX") {
		t.Error("view should show the lit buzzer lamp")
	}
}

func TestKeyHighlightExpires(t *testing.T) {
	m, _, _ := newTestModel(t)
	start := time.Now()
	m, _ = update(t, m, tickMsg(start))
	m, _ = update(t, m, runes("5"))
	if m.lastKey != '5' {
		t.Fatalf("lastKey = %s, want 5", m.lastKey)
	}
	m, _ = update(t, m, tickMsg(start.Add(KeyHighlight/2)))
	if m.lastKey != '5' {
		t.Error("highlight cleared too early")
	}
	m, _ = update(t, m, tickMsg(start.Add(2*KeyHighlight)))
	if m.lastKey != keypad.NoKey {
		t.Error("highlight should expire")
	}
}

func TestViewTooSmall(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(m.View(), "too small") {
		t.Errorf("View() = %q, want too-small notice", m.View())
	}
}

func TestViewTableTab(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	view := m.View()
	for _, want := range []string{"A  .-", "Z  --..", "0  -----"} {
		if !strings.Contains(view, want) {
			t.Errorf("table view missing %q", want)
		}
	}
}

func TestSimDevice(t *testing.T) {
	clock := sim.NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	matrix := sim.NewMatrix(clock)
	buzzer := sim.NewPin("buzzer", clock)
	dev := SimDevice{Matrix: matrix, Display: sim.NewDisplay(0x20), Buzzer: buzzer}

	if dev.Press('x') {
		t.Error("Press accepted a key that is not on the keypad")
	}
	if !dev.Press('9') || !matrix.Pressed() {
		t.Fatal("Press should hold the key on the matrix")
	}
	clock.Delay(DefaultHold)
	if matrix.Pressed() {
		t.Error("key should release after the hold time")
	}

	_ = buzzer.Set(true)
	if !dev.Buzzing() {
		t.Error("Buzzing = false with the pin high")
	}
	if got := dev.Screen().Lines[0]; got != strings.Repeat(" ", 16) {
		t.Errorf("blank screen row = %q", got)
	}
}
