package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultMaxLines bounds the lines a LogView keeps.
const DefaultMaxLines = 1000

// LogView is a scrollable event log that wraps bubbles/viewport. In follow
// mode (default) new lines scroll the view to the bottom. Only the most
// recent MaxLines lines are kept.
type LogView struct {
	vp       viewport.Model
	lines    []string // rendered (pre-styled) lines
	follow   bool
	maxLines int
	width    int
	height   int
}

// NewLogView creates a LogView with the given dimensions, initially in follow mode.
func NewLogView(w, h int) LogView {
	return LogView{
		vp:       viewport.New(w, h),
		follow:   true,
		maxLines: DefaultMaxLines,
		width:    w,
		height:   h,
	}
}

// WithMaxLines returns a LogView that keeps at most n lines (n <= 0 keeps the default).
func (v LogView) WithMaxLines(n int) LogView {
	if n <= 0 {
		n = DefaultMaxLines
	}
	v.maxLines = n
	return v.trim().refresh()
}

// AppendLine appends a pre-rendered line, dropping the oldest line once the
// cap is reached.
func (v LogView) AppendLine(rendered string) LogView {
	v.lines = append(v.lines, rendered)
	return v.trim().refresh()
}

// Len returns the number of lines held.
func (v LogView) Len() int {
	return len(v.lines)
}

// ToggleFollow switches follow mode on or off. Turning it on scrolls to the bottom.
func (v LogView) ToggleFollow() LogView {
	v.follow = !v.follow
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// SetSize resizes the view.
func (v LogView) SetSize(w, h int) LogView {
	v.width = w
	v.height = h
	v.vp.Width = w
	v.vp.Height = h
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// Following reports whether follow mode is active.
func (v LogView) Following() bool {
	return v.follow
}

// Update handles scroll keys and mouse wheel. Scrolling away from the bottom
// leaves follow mode.
func (v LogView) Update(msg tea.Msg) (LogView, tea.Cmd) {
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	if v.follow && !v.vp.AtBottom() {
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
			v.follow = false
		}
	}
	return v, cmd
}

// View renders the visible lines.
func (v LogView) View() string {
	return v.vp.View()
}

func (v LogView) trim() LogView {
	if over := len(v.lines) - v.maxLines; over > 0 {
		v.lines = append([]string(nil), v.lines[over:]...)
	}
	return v
}

func (v LogView) refresh() LogView {
	v.vp.SetContent(strings.Join(v.lines, "\n"))
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}
