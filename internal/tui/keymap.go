package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/keypad"
)

// GlobalKeyBindings lists the keys handled by the model itself. They never
// reach the simulated keypad.
var GlobalKeyBindings = []string{"q", "ctrl+c", "tab", "f", "up", "down", "pgup", "pgdown"}

// IsGlobalKey reports whether key is a global keybinding.
func IsGlobalKey(key string) bool {
	for _, k := range GlobalKeyBindings {
		if k == key {
			return true
		}
	}
	return false
}

// KeypadKey maps a terminal key to the keypad key it presses. Keypad symbols
// map to themselves; enter sends and backspace clears.
func KeypadKey(msg tea.KeyMsg) (keypad.Key, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return keypad.KeySend, true
	case tea.KeyBackspace, tea.KeyDelete:
		return keypad.KeyClear, true
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && msg.Runes[0] < 0x80 {
			return keypad.FromByte(byte(msg.Runes[0]))
		}
	}
	return keypad.NoKey, false
}
