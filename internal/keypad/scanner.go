package keypad

import (
	"errors"
	"fmt"
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal"
)

// ErrKeyStuck reports a key that was not released within the stuck timeout.
var ErrKeyStuck = errors.New("keypad: key stuck")

// Scan timing.
const (
	RowSettle           = 100 * time.Microsecond
	DebounceDelay       = 20 * time.Millisecond
	ReleasePoll         = time.Millisecond
	DefaultStuckTimeout = 2 * time.Second
)

// Source yields at most one key per physical press without blocking for
// longer than a scan takes.
type Source interface {
	Scan() (Key, error)
}

// Flusher is implemented by sources that buffer input. The application flushes
// after playback so that presses made while it was busy are discarded.
type Flusher interface {
	Flush() error
}

// Scanner reads the matrix by driving one row high at a time and sampling the
// pulled-down columns.
type Scanner struct {
	Rows         [4]hal.Pin
	Cols         hal.InputGroup
	Clock        hal.Clock
	StuckTimeout time.Duration // 0 uses DefaultStuckTimeout
}

// NewScanner returns a scanner for the board's matrix.
func NewScanner(b *hal.Board, stuckTimeout time.Duration) *Scanner {
	return &Scanner{Rows: b.Rows, Cols: b.Cols, Clock: b.Clock, StuckTimeout: stuckTimeout}
}

// Scan returns the first pressed key after it has been debounced and
// released. It returns NoKey when nothing is pressed. A key still held after
// the stuck timeout is dropped and reported with an error wrapping
// ErrKeyStuck.
func (s *Scanner) Scan() (Key, error) {
	for row := range s.Rows {
		if err := s.drive(row); err != nil {
			return NoKey, err
		}
		s.Clock.Delay(RowSettle)

		cols, err := s.Cols.Read()
		if err != nil {
			return NoKey, fmt.Errorf("keypad: read columns: %w", err)
		}
		cols &= 0x0F
		if cols == 0 {
			continue
		}
		for col := 0; col < 4; col++ {
			if cols&(1<<uint(col)) == 0 {
				continue
			}
			k := Layout[row][col]
			s.Clock.Delay(DebounceDelay)
			if err := s.awaitRelease(); err != nil {
				return NoKey, fmt.Errorf("keypad: %s: %w", k, err)
			}
			return k, nil
		}
	}
	return NoKey, nil
}

func (s *Scanner) drive(active int) error {
	for i, p := range s.Rows {
		if err := p.Set(false); err != nil {
			return fmt.Errorf("keypad: clear row %d: %w", i, err)
		}
	}
	if err := s.Rows[active].Set(true); err != nil {
		return fmt.Errorf("keypad: drive row %d: %w", active, err)
	}
	return nil
}

func (s *Scanner) awaitRelease() error {
	timeout := s.StuckTimeout
	if timeout <= 0 {
		timeout = DefaultStuckTimeout
	}
	for waited := time.Duration(0); waited < timeout; waited += ReleasePoll {
		cols, err := s.Cols.Read()
		if err != nil {
			return fmt.Errorf("read columns: %w", err)
		}
		if cols&0x0F == 0 {
			return nil
		}
		s.Clock.Delay(ReleasePoll)
	}
	return fmt.Errorf("held for %s: %w", timeout, ErrKeyStuck)
}
