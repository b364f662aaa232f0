package keypad

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// serialReadTimeout bounds a single Scan on an idle line.
const serialReadTimeout = time.Millisecond

// SerialSource reads key symbols sent as ASCII by a remote matrix scanner.
// Bytes that are not keypad symbols are dropped.
type SerialSource struct {
	port    serial.Port
	buf     [32]byte
	pending []Key
}

// OpenSerial opens the named port in 8N1 mode at baud.
func OpenSerial(name string, baud int) (*SerialSource, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("keypad: open serial %s: %w", name, err)
	}
	s, err := NewSerialSource(port)
	if err != nil {
		port.Close()
		return nil, err
	}
	return s, nil
}

// NewSerialSource wraps an already opened port.
func NewSerialSource(port serial.Port) (*SerialSource, error) {
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		return nil, fmt.Errorf("keypad: serial read timeout: %w", err)
	}
	return &SerialSource{port: port}, nil
}

// Scan returns the next received key, or NoKey if the line is idle.
func (s *SerialSource) Scan() (Key, error) {
	if len(s.pending) == 0 {
		n, err := s.port.Read(s.buf[:])
		if err != nil {
			return NoKey, fmt.Errorf("keypad: serial read: %w", err)
		}
		for _, b := range s.buf[:n] {
			if k, ok := FromByte(b); ok {
				s.pending = append(s.pending, k)
			}
		}
	}
	if len(s.pending) == 0 {
		return NoKey, nil
	}
	k := s.pending[0]
	s.pending = s.pending[1:]
	return k, nil
}

// Flush discards keys received but not yet scanned.
func (s *SerialSource) Flush() error {
	s.pending = nil
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("keypad: serial flush: %w", err)
	}
	return nil
}

// Close closes the port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
