// Package lcd drives an HD44780 character display through a PCF8574 I²C
// backpack in 4-bit mode. The controller's busy flag is never read; every
// command is followed by a fixed wait long enough for it to complete.
package lcd

import (
	"errors"
	"fmt"
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal"
)

// Geometry of the supported module.
const (
	Rows = 2
	Cols = 16
)

// DefaultAddress is the 7-bit address of a PCF8574 with A0-A2 tied low.
const DefaultAddress = 0x20

// Expander output bits.
const (
	bitRS        = 0x01
	bitEnable    = 0x04
	bitBacklight = 0x08
)

// Controller commands.
const (
	cmdClear       = 0x01
	cmdFunction4x2 = 0x28 // 4-bit interface, 2 lines, 5x8 font
	cmdDisplayOn   = 0x0C // display on, cursor off, blink off
	cmdSetDDRAM    = 0x80
	nibbleReset    = 0x30 // function set, 8-bit, sent as a lone nibble
	nibbleFourBit  = 0x20 // function set, 4-bit, sent as a lone nibble
)

// Waits, measured from the end of the last bus transaction.
const (
	powerOnWait  = 50 * time.Millisecond
	firstReset   = 5 * time.Millisecond
	resetWait    = time.Millisecond
	commandWait  = 2 * time.Millisecond
	dataWait     = time.Millisecond
	settleWait   = 50 * time.Millisecond
	enablePulse  = 50 * time.Microsecond
	defaultRetry = 2
)

var rowBase = [Rows]byte{0x00, 0x40}

// ErrTextClamped is returned when WriteText reaches the end of the row. The
// characters that fit are written.
var ErrTextClamped = errors.New("lcd: text clamped at end of row")

// Config tunes the driver.
type Config struct {
	Address uint8 // 7-bit; 0 uses DefaultAddress
	Retries int   // extra attempts per nibble after a bus timeout; <0 disables
}

// Driver owns the display content. It is not safe for concurrent use.
type Driver struct {
	bus     hal.Bus
	clock   hal.Clock
	addr    uint8
	retries int

	row, col int
	retried  int
	desynced bool
}

// New returns a driver on bus. Call Init before anything else.
func New(bus hal.Bus, clock hal.Clock, cfg Config) *Driver {
	d := &Driver{bus: bus, clock: clock, addr: cfg.Address, retries: cfg.Retries}
	if d.addr == 0 {
		d.addr = DefaultAddress
	}
	if d.retries == 0 {
		d.retries = defaultRetry
	}
	if d.retries < 0 {
		d.retries = 0
	}
	return d
}

// Init runs the power-on handshake. The sequence and its waits are fixed by
// the controller: three 8-bit function sets force a known interface width
// whatever state the controller was left in, then it is switched to 4-bit.
func (d *Driver) Init() error {
	d.clock.Delay(powerOnWait)
	if err := d.widthReset(); err != nil {
		return fmt.Errorf("lcd: init: %w", err)
	}
	d.desynced = false
	for _, cmd := range []byte{cmdFunction4x2, cmdDisplayOn, cmdClear} {
		if err := d.Command(cmd); err != nil {
			return fmt.Errorf("lcd: init: %w", err)
		}
	}
	d.clock.Delay(settleWait)
	d.row, d.col = 0, 0
	return nil
}

// widthReset forces 8-bit mode and then switches to 4-bit. It works from
// either nibble phase: a pending high nibble is completed by the first reset.
func (d *Driver) widthReset() error {
	steps := []struct {
		nibble byte
		wait   time.Duration
	}{
		{nibbleReset, firstReset},
		{nibbleReset, resetWait},
		{nibbleReset, resetWait},
		{nibbleFourBit, 0},
	}
	for _, s := range steps {
		if err := d.nibble(s.nibble, false); err != nil {
			return err
		}
		d.clock.Delay(s.wait)
	}
	return nil
}

// resync restores nibble phase after a byte was cut in half. The byte the
// controller completed with the first reset nibble is lost, and so is the
// cursor position.
func (d *Driver) resync() error {
	if err := d.widthReset(); err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	d.desynced = false
	if err := d.sendByte(cmdFunction4x2, false); err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	d.clock.Delay(commandWait)
	return nil
}

// Clear blanks the display and homes the cursor.
func (d *Driver) Clear() error {
	if err := d.Command(cmdClear); err != nil {
		return err
	}
	d.row, d.col = 0, 0
	return nil
}

// SetCursor moves the write position.
func (d *Driver) SetCursor(row, col int) error {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return fmt.Errorf("lcd: cursor (%d, %d) outside %dx%d", row, col, Rows, Cols)
	}
	if err := d.Command(cmdSetDDRAM | (rowBase[row] + byte(col))); err != nil {
		return err
	}
	d.row, d.col = row, col
	return nil
}

// WriteText writes s from the cursor. Text past the last column is not
// written and ErrTextClamped is returned.
func (d *Driver) WriteText(s string) error {
	for i := 0; i < len(s); i++ {
		if d.col >= Cols {
			return fmt.Errorf("%w: %d of %d bytes written", ErrTextClamped, i, len(s))
		}
		if err := d.Data(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// Command sends one instruction byte and waits for it to complete.
func (d *Driver) Command(b byte) error {
	if err := d.sendByte(b, false); err != nil {
		return fmt.Errorf("lcd: command 0x%02x: %w", b, err)
	}
	d.clock.Delay(commandWait)
	return nil
}

// Data writes one character at the cursor.
func (d *Driver) Data(b byte) error {
	if err := d.sendByte(b, true); err != nil {
		return fmt.Errorf("lcd: data %q: %w", b, err)
	}
	d.col++
	d.clock.Delay(dataWait)
	return nil
}

// Retried returns how many nibble transactions had to be repeated.
func (d *Driver) Retried() int { return d.retried }

// sendByte writes b as two nibbles. A failed first nibble latches nothing,
// since the falling enable edge is the last write. A failed second nibble
// leaves the controller holding half a byte, so the next byte resyncs first.
func (d *Driver) sendByte(b byte, rs bool) error {
	if d.desynced {
		if err := d.resync(); err != nil {
			return err
		}
	}
	if err := d.nibble(b&0xF0, rs); err != nil {
		return err
	}
	if err := d.nibble(b<<4, rs); err != nil {
		d.desynced = true
		return err
	}
	return nil
}

// nibble sends the high four bits of v as one bus transaction, retrying on
// bus timeouts.
func (d *Driver) nibble(v byte, rs bool) error {
	var err error
	for attempt := 0; attempt <= d.retries; attempt++ {
		if attempt > 0 {
			d.retried++
		}
		err = d.transact(v, rs)
		if err == nil || !errors.Is(err, hal.ErrBusTimeout) {
			return err
		}
	}
	return err
}

func (d *Driver) transact(v byte, rs bool) error {
	out := v&0xF0 | bitBacklight
	if rs {
		out |= bitRS
	}
	if err := d.bus.Start(); err != nil {
		_ = d.bus.Stop()
		return err
	}
	err := d.strobe(out)
	if stopErr := d.bus.Stop(); err == nil {
		err = stopErr
	}
	return err
}

func (d *Driver) strobe(out byte) error {
	if err := d.bus.WriteByte(d.addr << 1); err != nil {
		return err
	}
	if err := d.bus.WriteByte(out | bitEnable); err != nil {
		return err
	}
	d.clock.Delay(enablePulse)
	if err := d.bus.WriteByte(out); err != nil {
		return err
	}
	d.clock.Delay(enablePulse)
	return nil
}
