// Package periph backs hal.Board with real GPIO and I²C on Linux single-board
// computers through periph.io.
package periph

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal"
)

// Options names the host resources the board is wired to.
type Options struct {
	BusName string // I²C bus name; "" selects the first available bus
	Buzzer  string
	Rows    [4]string
	Cols    [4]string
}

// Open initializes the host drivers and returns a board wired per opts.
// The returned closer releases the I²C bus.
func Open(opts Options) (*hal.Board, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph: host init: %w", err)
	}

	bus, err := i2creg.Open(opts.BusName)
	if err != nil {
		return nil, nil, fmt.Errorf("periph: open i2c %q: %w", opts.BusName, err)
	}

	board := &hal.Board{
		Bus:   NewBus(bus),
		Clock: hal.SystemClock{},
	}

	buzzer, err := outputPin(opts.Buzzer)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	board.Buzzer = buzzer

	for i, name := range opts.Rows {
		p, pinErr := outputPin(name)
		if pinErr != nil {
			bus.Close()
			return nil, nil, pinErr
		}
		board.Rows[i] = p
	}

	var cols ColumnGroup
	for i, name := range opts.Cols {
		p := gpioreg.ByName(name)
		if p == nil {
			bus.Close()
			return nil, nil, fmt.Errorf("periph: unknown pin %q", name)
		}
		if inErr := p.In(gpio.PullDown, gpio.NoEdge); inErr != nil {
			bus.Close()
			return nil, nil, fmt.Errorf("periph: configure %s as input: %w", name, inErr)
		}
		cols[i] = p
	}
	board.Cols = cols

	return board, bus, nil
}

func outputPin(name string) (OutputPin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return OutputPin{}, fmt.Errorf("periph: unknown pin %q", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return OutputPin{}, fmt.Errorf("periph: configure %s as output: %w", name, err)
	}
	return OutputPin{p: p}, nil
}

// OutputPin adapts a gpio.PinOut to hal.Pin.
type OutputPin struct {
	p gpio.PinOut
}

// NewOutputPin wraps p.
func NewOutputPin(p gpio.PinOut) OutputPin { return OutputPin{p: p} }

// Set drives the pin.
func (o OutputPin) Set(high bool) error {
	return o.p.Out(gpio.Level(high))
}

// ColumnGroup reads four inputs as a bit mask, index 0 in bit 0.
type ColumnGroup [4]gpio.PinIn

// Read samples every column.
func (c ColumnGroup) Read() (uint8, error) {
	var v uint8
	for i, p := range c {
		if p == nil {
			return 0, fmt.Errorf("periph: column %d not configured", i)
		}
		if p.Read() == gpio.High {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}

// Bus adapts a periph i2c.Bus to the byte-at-a-time hal.Bus. Bytes between
// Start and Stop are buffered and sent as one Tx on Stop; the first byte is
// the address byte (7-bit address shifted left, write bit clear).
//
// Caller delays between WriteByte calls therefore elapse before anything is
// on the wire. The expander's enable pulse width comes from the bus clock
// instead: one data byte at 100 kHz holds the line for about 90µs, above the
// controller's 450ns minimum.
type Bus struct {
	bus  i2c.Bus
	buf  []byte
	open bool
}

// NewBus wraps bus.
func NewBus(bus i2c.Bus) *Bus {
	return &Bus{bus: bus}
}

// Start opens a transaction.
func (b *Bus) Start() error {
	b.buf = b.buf[:0]
	b.open = true
	return nil
}

// WriteByte queues one byte.
func (b *Bus) WriteByte(v byte) error {
	if !b.open {
		return errors.New("periph: write outside transaction")
	}
	b.buf = append(b.buf, v)
	return nil
}

// Stop sends the queued bytes. The host drivers do not distinguish a missing
// acknowledge from a stalled controller, so any Tx failure is reported as
// hal.ErrBusTimeout and left to the caller's retry policy.
func (b *Bus) Stop() error {
	if !b.open {
		return nil
	}
	b.open = false
	if len(b.buf) == 0 {
		return nil
	}
	addr := uint16(b.buf[0] >> 1)
	if err := b.bus.Tx(addr, b.buf[1:], nil); err != nil {
		return fmt.Errorf("periph: i2c tx to 0x%02x: %v: %w", addr, err, hal.ErrBusTimeout)
	}
	return nil
}
