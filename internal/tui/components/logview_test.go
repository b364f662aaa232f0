package components

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// eventLines returns n log lines in the shape the simulator renders.
func eventLines(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("[15:04:%02d]  ✎ Pending %c", i%60, 'A'+i%26)
	}
	return out
}

func appendAll(lv LogView, lines []string) LogView {
	for _, l := range lines {
		lv = lv.AppendLine(l)
	}
	return lv
}

func TestLogView_StartsFollowing(t *testing.T) {
	lv := NewLogView(60, 8)
	if !lv.Following() {
		t.Error("a new log should follow the newest event")
	}
	if lv.Len() != 0 {
		t.Errorf("Len = %d, want 0", lv.Len())
	}
	_ = lv.View()
}

func TestLogView_RendersAppendedEvents(t *testing.T) {
	lines := eventLines(3)
	lv := appendAll(NewLogView(60, 8), lines)

	view := lv.View()
	for _, want := range lines {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestLogView_Cap(t *testing.T) {
	tests := []struct {
		name      string
		max       int
		appended  int
		wantLen   int
		wantFirst string
	}{
		{name: "under cap keeps all", max: 5, appended: 3, wantLen: 3, wantFirst: "Pending A"},
		{name: "over cap keeps newest", max: 3, appended: 5, wantLen: 3, wantFirst: "Pending C"},
		{name: "non-positive cap uses default", max: 0, appended: 4, wantLen: 4, wantFirst: "Pending A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lv := appendAll(NewLogView(60, 8).WithMaxLines(tt.max), eventLines(tt.appended))
			if lv.Len() != tt.wantLen {
				t.Fatalf("Len = %d, want %d", lv.Len(), tt.wantLen)
			}
			if !strings.Contains(lv.lines[0], tt.wantFirst) {
				t.Errorf("oldest kept line = %q, want it to contain %q", lv.lines[0], tt.wantFirst)
			}
		})
	}
}

func TestLogView_LoweringCapTrims(t *testing.T) {
	lv := appendAll(NewLogView(60, 8), eventLines(4)).WithMaxLines(2)
	if lv.Len() != 2 {
		t.Fatalf("Len = %d, want 2", lv.Len())
	}
	if strings.Contains(lv.View(), "Pending B") {
		t.Error("trimmed event still rendered")
	}
}

func TestLogView_ToggleFollow(t *testing.T) {
	lv := NewLogView(60, 8)
	for i, want := range []bool{false, true, false} {
		lv = lv.ToggleFollow()
		if lv.Following() != want {
			t.Errorf("toggle %d: Following = %v, want %v", i+1, lv.Following(), want)
		}
	}
}

func TestLogView_SetSize(t *testing.T) {
	lv := NewLogView(60, 8).SetSize(100, 20)
	if lv.vp.Width != 100 || lv.vp.Height != 20 {
		t.Errorf("viewport = %dx%d, want 100x20", lv.vp.Width, lv.vp.Height)
	}
}

// scrolledUp returns a log taller than its view with the viewport at the top.
func scrolledUp(t *testing.T) LogView {
	t.Helper()
	lv := appendAll(NewLogView(60, 2), eventLines(20))
	lv.vp.YOffset = 0
	if lv.vp.AtBottom() {
		t.Skip("viewport content does not exceed height")
	}
	return lv
}

func TestLogView_UpdateFollow(t *testing.T) {
	tests := []struct {
		name       string
		followOff  bool
		msg        tea.Msg
		wantFollow bool
	}{
		{name: "key scroll leaves follow", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, wantFollow: false},
		{name: "wheel leaves follow", msg: tea.MouseMsg{Button: tea.MouseButtonWheelUp}, wantFollow: false},
		{name: "resize keeps follow", msg: tea.WindowSizeMsg{Width: 60, Height: 2}, wantFollow: true},
		{name: "already off stays off", followOff: true, msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, wantFollow: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lv := scrolledUp(t)
			if tt.followOff {
				lv = lv.ToggleFollow()
			}
			got, _ := lv.Update(tt.msg)
			if got.Following() != tt.wantFollow {
				t.Errorf("Following = %v, want %v", got.Following(), tt.wantFollow)
			}
		})
	}
}

func TestLogView_UpdateAtBottomKeepsFollow(t *testing.T) {
	lv := appendAll(NewLogView(60, 100), eventLines(3))
	if !lv.vp.AtBottom() {
		t.Skip("short log should fit the view")
	}
	got, _ := lv.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if !got.Following() {
		t.Error("a key at the bottom of a short log should not leave follow")
	}
}
