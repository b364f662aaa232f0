package sim

import (
	"sync"
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal"
)

// Matrix emulates a 4x4 key matrix with pull-down columns. A held key connects
// its row to its column, so the column reads high only while that row is
// driven high.
type Matrix struct {
	clock hal.Clock

	mu        sync.Mutex
	rows      [4]bool
	held      bool
	row, col  int
	releaseAt time.Time // zero while held indefinitely
}

// NewMatrix returns an idle matrix that uses clock to time releases.
func NewMatrix(clock hal.Clock) *Matrix {
	return &Matrix{clock: clock}
}

// Rows returns the four row drive pins.
func (m *Matrix) Rows() [4]hal.Pin {
	var pins [4]hal.Pin
	for i := range pins {
		pins[i] = rowPin{m: m, row: i}
	}
	return pins
}

// Press holds the key at (row, col) for hold, measured on the matrix clock.
func (m *Matrix) Press(row, col int, hold time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = true
	m.row, m.col = row, col
	m.releaseAt = m.clock.Now().Add(hold)
}

// Hold keeps the key at (row, col) down until Release.
func (m *Matrix) Hold(row, col int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = true
	m.row, m.col = row, col
	m.releaseAt = time.Time{}
}

// Release lets go of any held key.
func (m *Matrix) Release() {
	m.mu.Lock()
	m.held = false
	m.mu.Unlock()
}

// Pressed reports whether a key is currently down.
func (m *Matrix) Pressed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pressedLocked()
}

// Read returns the column mask for the currently driven rows.
func (m *Matrix) Read() (uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pressedLocked() || !m.rows[m.row] {
		return 0, nil
	}
	return 1 << uint(m.col), nil
}

func (m *Matrix) pressedLocked() bool {
	if !m.held {
		return false
	}
	if !m.releaseAt.IsZero() && !m.clock.Now().Before(m.releaseAt) {
		m.held = false
		return false
	}
	return true
}

type rowPin struct {
	m   *Matrix
	row int
}

func (p rowPin) Set(high bool) error {
	p.m.mu.Lock()
	p.m.rows[p.row] = high
	p.m.mu.Unlock()
	return nil
}
