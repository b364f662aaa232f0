package sim

import (
	"sync"
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal"
)

// Edge is one recorded Set call on a Pin.
type Edge struct {
	At   time.Time
	High bool
}

// Interval is a span of time a pin spent at one level.
type Interval struct {
	High     bool
	Duration time.Duration
}

// Pin is a recording digital output.
type Pin struct {
	Name string

	clock hal.Clock
	mu    sync.Mutex
	high  bool
	edges []Edge
	err   error
}

// NewPin returns a low pin that timestamps edges with clock.
func NewPin(name string, clock hal.Clock) *Pin {
	return &Pin{Name: name, clock: clock}
}

// Set records the level change. A failure injected with FailWith is returned
// instead and the level is left unchanged.
func (p *Pin) Set(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.high = high
	p.edges = append(p.edges, Edge{At: p.clock.Now(), High: high})
	return nil
}

// FailWith makes every following Set return err. Pass nil to recover.
func (p *Pin) FailWith(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// High reports the current level.
func (p *Pin) High() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.high
}

// Edges returns a copy of every recorded Set.
func (p *Pin) Edges() []Edge {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Edge, len(p.edges))
	copy(out, p.edges)
	return out
}

// Reset discards the recorded edges.
func (p *Pin) Reset() {
	p.mu.Lock()
	p.edges = nil
	p.mu.Unlock()
}

// Intervals folds the recorded edges into level spans from the first edge up
// to end. Adjacent spans at the same level are merged.
func (p *Pin) Intervals(end time.Time) []Interval {
	edges := p.Edges()
	var out []Interval
	for i, e := range edges {
		stop := end
		if i+1 < len(edges) {
			stop = edges[i+1].At
		}
		d := stop.Sub(e.At)
		if n := len(out); n > 0 && out[n-1].High == e.High {
			out[n-1].Duration += d
			continue
		}
		if d == 0 && i+1 < len(edges) {
			continue
		}
		out = append(out, Interval{High: e.High, Duration: d})
	}
	return out
}
