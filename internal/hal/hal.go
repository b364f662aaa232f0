// Package hal defines the hardware capabilities the firmware logic depends on:
// a digital output, a digital input group, a delay source, and a bus master.
// Platform backends (internal/hal/periph, internal/hal/sim) implement them so
// the keypad, display and Morse logic never touch registers directly.
package hal

import (
	"errors"
	"fmt"
	"time"
)

// ErrBusTimeout reports that a bus transfer's completion condition was not
// observed within the poll budget.
var ErrBusTimeout = errors.New("hal: bus timeout")

// Pin is a digital output.
type Pin interface {
	Set(high bool) error
}

// InputGroup reads a group of digital inputs as a bit mask, bit 0 first.
type InputGroup interface {
	Read() (uint8, error)
}

// Clock provides the blocking delay primitive. Every Delay call is a
// suspension point of the single control thread.
type Clock interface {
	Delay(d time.Duration)
	Now() time.Time
}

// Bus is a byte-oriented bus master. WriteByte blocks until the transfer
// completes or the poll budget expires, in which case it returns an error
// wrapping ErrBusTimeout.
type Bus interface {
	Start() error
	WriteByte(b byte) error
	Stop() error
}

// Board bundles the capabilities of one keypad/display/buzzer unit.
type Board struct {
	Buzzer Pin
	Rows   [4]Pin
	Cols   InputGroup
	Bus    Bus
	Clock  Clock
}

// Validate reports every missing capability.
func (b *Board) Validate() error {
	var errs []error
	if b.Buzzer == nil {
		errs = append(errs, fmt.Errorf("board: buzzer pin not set"))
	}
	for i, p := range b.Rows {
		if p == nil {
			errs = append(errs, fmt.Errorf("board: row pin %d not set", i))
		}
	}
	if b.Cols == nil {
		errs = append(errs, fmt.Errorf("board: column inputs not set"))
	}
	if b.Bus == nil {
		errs = append(errs, fmt.Errorf("board: bus not set"))
	}
	if b.Clock == nil {
		errs = append(errs, fmt.Errorf("board: clock not set"))
	}
	return errors.Join(errs...)
}

// PollCompletion checks done up to budget times and returns ErrBusTimeout if
// it never reports true. A budget <= 0 checks once.
func PollCompletion(budget int, done func() bool) error {
	if budget <= 0 {
		budget = 1
	}
	for i := 0; i < budget; i++ {
		if done() {
			return nil
		}
	}
	return ErrBusTimeout
}

// SystemClock delays with time.Sleep.
type SystemClock struct{}

// Delay sleeps for d.
func (SystemClock) Delay(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Now returns the wall clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// MultiPin drives several outputs as one, e.g. a buzzer pin and a speaker.
// Every pin is set; the first error is returned.
type MultiPin []Pin

// Set drives all pins to the same level.
func (m MultiPin) Set(high bool) error {
	var first error
	for _, p := range m {
		if err := p.Set(high); err != nil && first == nil {
			first = err
		}
	}
	return first
}
