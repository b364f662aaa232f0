package keypad

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ConsoleSource reads keys from a terminal in raw mode. Enter sends and
// Backspace clears; Ctrl+C and Ctrl+D call OnInterrupt.
type ConsoleSource struct {
	OnInterrupt func()

	keys  chan Key
	errc  chan error
	fd    int
	state *term.State
}

// OpenConsole puts f into raw mode and starts reading it. Close restores the
// terminal.
func OpenConsole(f *os.File) (*ConsoleSource, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("keypad: console source needs a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("keypad: raw mode: %w", err)
	}
	c := newConsoleSource(f)
	c.fd = fd
	c.state = state
	return c, nil
}

func newConsoleSource(r io.Reader) *ConsoleSource {
	c := &ConsoleSource{
		keys: make(chan Key, 16),
		errc: make(chan error, 1),
		fd:   -1,
	}
	go c.read(r)
	return c
}

func (c *ConsoleSource) read(r io.Reader) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			k, ok := consoleKey(b)
			if !ok {
				if b == 0x03 || b == 0x04 {
					c.interrupt()
				}
				continue
			}
			select {
			case c.keys <- k:
			default:
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.errc <- fmt.Errorf("keypad: console read: %w", err)
			}
			return
		}
	}
}

func (c *ConsoleSource) interrupt() {
	if c.OnInterrupt != nil {
		c.OnInterrupt()
	}
}

func consoleKey(b byte) (Key, bool) {
	switch b {
	case '\r', '\n':
		return KeySend, true
	case 0x7F, 0x08:
		return KeyClear, true
	}
	return FromByte(b)
}

// Scan returns the next typed key, or NoKey.
func (c *ConsoleSource) Scan() (Key, error) {
	select {
	case err := <-c.errc:
		return NoKey, err
	case k := <-c.keys:
		return k, nil
	default:
		return NoKey, nil
	}
}

// Flush discards keys typed while the application was busy.
func (c *ConsoleSource) Flush() error {
	for {
		select {
		case <-c.keys:
		default:
			return nil
		}
	}
}

// Close restores the terminal state.
func (c *ConsoleSource) Close() error {
	if c.state == nil {
		return nil
	}
	return term.Restore(c.fd, c.state)
}
