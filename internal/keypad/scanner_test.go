package keypad

import (
	"errors"
	"testing"
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal/sim"
)

func newTestScanner(stuck time.Duration) (*Scanner, *sim.Matrix, *sim.Clock) {
	clock := sim.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	m := sim.NewMatrix(clock)
	return &Scanner{Rows: m.Rows(), Cols: m, Clock: clock, StuckTimeout: stuck}, m, clock
}

func press(t *testing.T, m *sim.Matrix, k Key, hold time.Duration) {
	t.Helper()
	row, col, ok := Position(k)
	if !ok {
		t.Fatalf("no position for %s", k)
	}
	m.Press(row, col, hold)
}

func TestScanner_EveryKey(t *testing.T) {
	for _, row := range Layout {
		for _, k := range row {
			t.Run(k.String(), func(t *testing.T) {
				s, m, _ := newTestScanner(0)
				press(t, m, k, 80*time.Millisecond)
				got, err := s.Scan()
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != k {
					t.Errorf("Scan = %s, want %s", got, k)
				}
			})
		}
	}
}

func TestScanner_NoKey(t *testing.T) {
	s, _, _ := newTestScanner(0)
	got, err := s.Scan()
	if err != nil || got != NoKey {
		t.Errorf("Scan = (%s, %v), want (none, nil)", got, err)
	}
}

func TestScanner_OnePressYieldsOneKey(t *testing.T) {
	s, m, _ := newTestScanner(0)
	press(t, m, '2', 60*time.Millisecond)

	first, _ := s.Scan()
	second, _ := s.Scan()
	if first != '2' || second != NoKey {
		t.Errorf("scans = %s, %s; want 2, none", first, second)
	}
}

func TestScanner_WaitsForReleaseAfterDebounce(t *testing.T) {
	s, m, clock := newTestScanner(0)
	start := clock.Now()
	press(t, m, '8', 150*time.Millisecond)

	if _, err := s.Scan(); err != nil {
		t.Fatal(err)
	}
	waited := clock.Now().Sub(start)
	if waited < 150*time.Millisecond {
		t.Errorf("Scan returned after %s, before the key was released", waited)
	}
	if waited > 150*time.Millisecond+DebounceDelay+5*time.Millisecond {
		t.Errorf("Scan took %s, too long after release", waited)
	}
}

func TestScanner_StuckKey(t *testing.T) {
	s, m, clock := newTestScanner(500 * time.Millisecond)
	row, col, _ := Position('5')
	m.Hold(row, col)
	start := clock.Now()

	got, err := s.Scan()
	if !errors.Is(err, ErrKeyStuck) {
		t.Fatalf("err = %v, want ErrKeyStuck", err)
	}
	if got != NoKey {
		t.Errorf("stuck key should be dropped, got %s", got)
	}
	if waited := clock.Now().Sub(start); waited > time.Second {
		t.Errorf("stuck wait took %s, want bounded near 500ms", waited)
	}

	m.Release()
	if got, err := s.Scan(); err != nil || got != NoKey {
		t.Errorf("after release Scan = (%s, %v), want (none, nil)", got, err)
	}
}

type failingCols struct{ err error }

func (f failingCols) Read() (uint8, error) { return 0, f.err }

func TestScanner_ReadError(t *testing.T) {
	s, _, _ := newTestScanner(0)
	boom := errors.New("boom")
	s.Cols = failingCols{err: boom}
	if _, err := s.Scan(); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestScanner_DrivesOneRowAtATime(t *testing.T) {
	clock := sim.NewClock(time.Now())
	var pins [4]*sim.Pin
	s := &Scanner{Cols: failingCols{}, Clock: clock}
	for i := range pins {
		pins[i] = sim.NewPin("row", clock)
		s.Rows[i] = pins[i]
	}
	if _, err := s.Scan(); err != nil {
		t.Fatal(err)
	}
	// After a full idle scan only the last row is left driven.
	for i, p := range pins {
		if want := i == 3; p.High() != want {
			t.Errorf("row %d high = %v, want %v", i, p.High(), want)
		}
	}
}
