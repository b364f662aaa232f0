package sim

import (
	"strings"
	"sync"
)

// PCF8574 backpack wiring: D7..D4 carry the nibble, then backlight, enable,
// read/write (unused, always write) and register select.
const (
	expBacklight = 0x08
	expEnable    = 0x04
	expRS        = 0x01
)

// DisplayCols is the visible width of each row.
const DisplayCols = 16

const ddramCols = 40

// Screen is a snapshot of the emulated display.
type Screen struct {
	Lines     [2]string
	On        bool
	Backlight bool
	FourBit   bool
	Clears    int
}

// Display emulates an HD44780 character controller behind a PCF8574 I/O
// expander. It latches a nibble on every falling edge of the enable line and
// starts in 8-bit interface mode, as the controller does after power-on.
type Display struct {
	Address uint8 // 7-bit bus address

	mu        sync.Mutex
	last      byte
	fourBit   bool
	half      bool
	hi        byte
	ddram     [2][ddramCols]byte
	addr      byte
	on        bool
	backlight bool
	clears    int
}

// NewDisplay returns a powered-on display answering at the 7-bit address.
func NewDisplay(address uint8) *Display {
	d := &Display{Address: address}
	d.clearLocked()
	d.clears = 0
	return d
}

// Transaction implements Device.
func (d *Display) Transaction(tx []byte) {
	if len(tx) == 0 || tx[0] != d.Address<<1 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, v := range tx[1:] {
		d.output(v)
	}
}

// Snapshot returns the visible state.
func (d *Display) Snapshot() Screen {
	d.mu.Lock()
	defer d.mu.Unlock()
	var s Screen
	for row := range s.Lines {
		s.Lines[row] = string(d.ddram[row][:DisplayCols])
	}
	s.On = d.on
	s.Backlight = d.backlight
	s.FourBit = d.fourBit
	s.Clears = d.clears
	return s
}

// Text returns both visible rows with trailing spaces removed.
func (d *Display) Text() [2]string {
	s := d.Snapshot()
	return [2]string{
		strings.TrimRight(s.Lines[0], " "),
		strings.TrimRight(s.Lines[1], " "),
	}
}

func (d *Display) output(v byte) {
	prev := d.last
	d.last = v
	d.backlight = v&expBacklight != 0
	if prev&expEnable != 0 && v&expEnable == 0 {
		d.nibble(v>>4, v&expRS != 0)
	}
}

func (d *Display) nibble(n byte, rs bool) {
	if !d.fourBit {
		// In 8-bit mode only D7..D4 are wired; the low data lines read as 0.
		d.exec(n<<4, rs)
		return
	}
	if !d.half {
		d.hi = n
		d.half = true
		return
	}
	d.half = false
	d.exec(d.hi<<4|n, rs)
}

func (d *Display) exec(b byte, rs bool) {
	if rs {
		d.write(b)
		return
	}
	switch {
	case b&0x80 != 0:
		d.addr = b & 0x7F
	case b&0xE0 == 0x20:
		wasFourBit := d.fourBit
		d.fourBit = b&0x10 == 0
		if d.fourBit != wasFourBit {
			d.half = false
		}
	case b&0xF8 == 0x08:
		d.on = b&0x04 != 0
	case b&0xFE == 0x02:
		d.addr = 0
	case b == 0x01:
		d.clearLocked()
	}
}

func (d *Display) write(b byte) {
	row, col := 0, int(d.addr)
	if d.addr >= 0x40 {
		row, col = 1, int(d.addr-0x40)
	}
	if col < ddramCols {
		d.ddram[row][col] = b
	}
	d.addr++
	switch d.addr {
	case ddramCols:
		d.addr = 0x40
	case 0x40 + ddramCols:
		d.addr = 0
	}
}

func (d *Display) clearLocked() {
	for row := range d.ddram {
		for col := range d.ddram[row] {
			d.ddram[row][col] = ' '
		}
	}
	d.addr = 0
	d.clears++
}
