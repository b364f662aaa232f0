package tui

import (
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal/sim"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/keypad"
)

// DefaultHold is how long a simulated press keeps the key down. It must
// outlast the scanner's debounce delay.
const DefaultHold = 60 * time.Millisecond

// Device is the simulated hardware the UI observes and drives.
type Device interface {
	Screen() sim.Screen
	Press(k keypad.Key) bool
	Buzzing() bool
}

// Level is implemented by pins that expose their current level.
type Level interface {
	High() bool
}

// SimDevice adapts the sim backend to Device.
type SimDevice struct {
	Matrix  *sim.Matrix
	Display *sim.Display
	Buzzer  Level
	Hold    time.Duration // 0 uses DefaultHold
}

// Screen returns a snapshot of the emulated display.
func (d SimDevice) Screen() sim.Screen {
	return d.Display.Snapshot()
}

// Press holds k on the matrix for the hold time. It reports false for keys
// that are not on the keypad.
func (d SimDevice) Press(k keypad.Key) bool {
	row, col, ok := keypad.Position(k)
	if !ok {
		return false
	}
	hold := d.Hold
	if hold <= 0 {
		hold = DefaultHold
	}
	d.Matrix.Press(row, col, hold)
	return true
}

// Buzzing reports whether the buzzer is keyed.
func (d SimDevice) Buzzing() bool {
	return d.Buzzer != nil && d.Buzzer.High()
}
