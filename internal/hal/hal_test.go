package hal

import (
	"errors"
	"strings"
	"testing"
)

type recPin struct {
	levels []bool
	err    error
}

func (p *recPin) Set(high bool) error {
	p.levels = append(p.levels, high)
	return p.err
}

func TestPollCompletion(t *testing.T) {
	tests := []struct {
		name      string
		budget    int
		readyAt   int // call number that reports done; 0 = never
		wantErr   bool
		wantCalls int
	}{
		{"ready immediately", 10, 1, false, 1},
		{"ready on last poll", 5, 5, false, 5},
		{"budget exhausted", 5, 0, true, 5},
		{"ready after budget", 3, 4, true, 3},
		{"zero budget polls once", 0, 1, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := PollCompletion(tt.budget, func() bool {
				calls++
				return tt.readyAt != 0 && calls >= tt.readyAt
			})
			if tt.wantErr && !errors.Is(err, ErrBusTimeout) {
				t.Errorf("err = %v, want ErrBusTimeout", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBoardValidate(t *testing.T) {
	t.Run("empty board lists every capability", func(t *testing.T) {
		err := (&Board{}).Validate()
		if err == nil {
			t.Fatal("expected error")
		}
		for _, want := range []string{"buzzer", "row pin 0", "row pin 3", "column", "bus", "clock"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error should mention %q: %v", want, err)
			}
		}
	})

	t.Run("complete board", func(t *testing.T) {
		p := &recPin{}
		b := &Board{
			Buzzer: p,
			Rows:   [4]Pin{p, p, p, p},
			Cols:   groupFunc(func() (uint8, error) { return 0, nil }),
			Bus:    nopBus{},
			Clock:  SystemClock{},
		}
		if err := b.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestMultiPin(t *testing.T) {
	a, b := &recPin{}, &recPin{err: errors.New("b broke")}
	c := &recPin{}
	err := MultiPin{a, b, c}.Set(true)
	if err == nil || err.Error() != "b broke" {
		t.Errorf("err = %v, want b broke", err)
	}
	for i, p := range []*recPin{a, b, c} {
		if len(p.levels) != 1 || !p.levels[0] {
			t.Errorf("pin %d levels = %v, want [true]", i, p.levels)
		}
	}
}

type groupFunc func() (uint8, error)

func (f groupFunc) Read() (uint8, error) { return f() }

type nopBus struct{}

func (nopBus) Start() error         { return nil }
func (nopBus) WriteByte(byte) error { return nil }
func (nopBus) Stop() error          { return nil }
