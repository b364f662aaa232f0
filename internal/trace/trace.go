// Package trace captures bus and pin activity as JSONL, one operation per
// line, and replays captured bus traffic through the display emulator.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal/sim"
)

// Kind identifies a traced operation.
type Kind string

const (
	KindStart Kind = "start"
	KindWrite Kind = "write"
	KindStop  Kind = "stop"
	KindPin   Kind = "pin"
)

// Op is one traced operation.
type Op struct {
	At   time.Time `json:"at"`
	Kind Kind      `json:"kind"`
	Pin  string    `json:"pin,omitempty"`
	Byte uint8     `json:"byte,omitempty"`
	High bool      `json:"high,omitempty"`
	Err  string    `json:"err,omitempty"`
}

// String formats the op for a terminal listing.
func (o Op) String() string {
	ts := o.At.Format("15:04:05.000000")
	var s string
	switch o.Kind {
	case KindWrite:
		s = fmt.Sprintf("%s  write 0x%02X", ts, o.Byte)
	case KindPin:
		level := "low"
		if o.High {
			level = "high"
		}
		s = fmt.Sprintf("%s  pin   %s %s", ts, o.Pin, level)
	default:
		s = fmt.Sprintf("%s  %s", ts, o.Kind)
	}
	if o.Err != "" {
		s += "  ! " + o.Err
	}
	return s
}

// Recorder appends ops to a JSONL file. Lines are buffered and flushed at
// every bus stop and on Close. It is safe to call from multiple goroutines.
type Recorder struct {
	clock hal.Clock

	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
	n    int
}

// Create truncates or creates the trace file at path, creating its directory
// as needed. Ops are timestamped with clock.
func Create(path string, clock hal.Clock) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("trace: mkdir %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trace: create %q: %w", path, err)
	}
	return &Recorder{clock: clock, file: f, w: bufio.NewWriter(f)}, nil
}

// Record appends op, stamping it with the recorder's clock when At is zero.
func (r *Recorder) Record(op Op) error {
	if op.At.IsZero() {
		op.At = r.clock.Now()
	}
	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("trace: marshal: %w", err)
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.w.Write(data); err != nil {
		return fmt.Errorf("trace: write: %w", err)
	}
	r.n++
	if op.Kind == KindStop {
		if err := r.w.Flush(); err != nil {
			return fmt.Errorf("trace: flush: %w", err)
		}
	}
	return nil
}

// Count returns the number of ops recorded so far.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Close flushes buffered ops and closes the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Flush(); err != nil {
		_ = r.file.Close()
		return fmt.Errorf("trace: flush: %w", err)
	}
	return r.file.Close()
}

// Bus wraps inner so that every call is recorded. Recording failures are
// logged and never affect the bus.
func (r *Recorder) Bus(inner hal.Bus) hal.Bus {
	return &tracedBus{inner: inner, r: r}
}

// Pin wraps inner so that every Set is recorded under name.
func (r *Recorder) Pin(name string, inner hal.Pin) hal.Pin {
	return &tracedPin{inner: inner, name: name, r: r}
}

func (r *Recorder) record(op Op, err error) {
	if err != nil {
		op.Err = err.Error()
	}
	if recErr := r.Record(op); recErr != nil {
		log.Printf("trace: dropping %s op: %v", op.Kind, recErr)
	}
}

type tracedBus struct {
	inner hal.Bus
	r     *Recorder
}

func (b *tracedBus) Start() error {
	err := b.inner.Start()
	b.r.record(Op{Kind: KindStart}, err)
	return err
}

func (b *tracedBus) WriteByte(v byte) error {
	err := b.inner.WriteByte(v)
	b.r.record(Op{Kind: KindWrite, Byte: v}, err)
	return err
}

func (b *tracedBus) Stop() error {
	err := b.inner.Stop()
	b.r.record(Op{Kind: KindStop}, err)
	return err
}

type tracedPin struct {
	inner hal.Pin
	name  string
	r     *Recorder
}

func (p *tracedPin) Set(high bool) error {
	err := p.inner.Set(high)
	p.r.record(Op{Kind: KindPin, Pin: p.name, High: high}, err)
	return err
}

// Load reads ops from r. Malformed lines are logged and skipped.
func Load(r io.Reader) ([]Op, error) {
	var ops []Op
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var op Op
		if err := json.Unmarshal(b, &op); err != nil {
			log.Printf("trace: skipping malformed line %d: %v", line, err)
			continue
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return ops, fmt.Errorf("trace: read: %w", err)
	}
	return ops, nil
}

// LoadFile reads ops from the file at path.
func LoadFile(path string) ([]Op, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Stats summarizes a capture.
type Stats struct {
	Transactions int
	Bytes        int
	Errors       int
	PinEdges     map[string]int
}

// Replay feeds every completed bus transaction in ops to d and returns a
// summary. Writes that failed on the wire are not delivered, matching what
// the device saw.
func Replay(ops []Op, d *sim.Display) Stats {
	st := Stats{PinEdges: make(map[string]int)}
	var tx []byte
	open := false
	for _, op := range ops {
		if op.Err != "" {
			st.Errors++
		}
		switch op.Kind {
		case KindStart:
			tx, open = tx[:0], true
		case KindWrite:
			if open && op.Err == "" {
				tx = append(tx, op.Byte)
				st.Bytes++
			}
		case KindStop:
			if open && len(tx) > 0 {
				d.Transaction(append([]byte(nil), tx...))
				st.Transactions++
			}
			open = false
		case KindPin:
			st.PinEdges[op.Pin]++
		}
	}
	return st
}
