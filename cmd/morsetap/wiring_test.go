package main

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/config"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/keypad"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/trace"
)

func simConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Board.Backend = config.BackendSim
	cfg.Board.Realtime = false
	cfg.Audio.Enabled = false
	return &cfg
}

func TestBuildRig_Sim(t *testing.T) {
	cfg := simConfig(t)
	r, err := buildRig(cfg)
	if err != nil {
		t.Fatalf("buildRig: %v", err)
	}
	defer r.Close()

	if r.matrix == nil || r.display == nil || r.buzzer == nil {
		t.Fatal("sim rig should expose matrix, display and buzzer")
	}
	if r.recorder != nil {
		t.Error("no recorder expected without a trace path")
	}
	if r.display.Address != uint8(cfg.Bus.Address) {
		t.Errorf("display address = %#x, want %#x", r.display.Address, cfg.Bus.Address)
	}
}

func TestBuildRig_UnknownBackend(t *testing.T) {
	cfg := simConfig(t)
	cfg.Board.Backend = "abacus"
	if _, err := buildRig(cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBuildKeys_Matrix(t *testing.T) {
	cfg := simConfig(t)
	r, err := buildRig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	keys, err := buildKeys(cfg, r, func() {})
	if err != nil {
		t.Fatalf("buildKeys: %v", err)
	}
	if _, ok := keys.(*keypad.Scanner); !ok {
		t.Errorf("matrix source should be a *keypad.Scanner, got %T", keys)
	}
}

func TestBuildKeys_Unknown(t *testing.T) {
	cfg := simConfig(t)
	r, err := buildRig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	cfg.Keypad.Source = "smoke-signals"
	if _, err := buildKeys(cfg, r, func() {}); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

// TestBuildApp_SimTraced composes and sends on the sim board with tracing on,
// then replays the capture.
func TestBuildApp_SimTraced(t *testing.T) {
	cfg := simConfig(t)
	cfg.Trace.Path = filepath.Join(t.TempDir(), "traces", "run.jsonl")

	r, err := buildRig(cfg)
	if err != nil {
		t.Fatalf("buildRig: %v", err)
	}
	keys, err := buildKeys(cfg, r, func() {})
	if err != nil {
		t.Fatal(err)
	}

	var logBuf bytes.Buffer
	a := buildApp(cfg, r, keys, nil, &logBuf)
	a.Boot()
	a.Handle('2')

	if got := r.display.Text()[0]; got != "Char: A" {
		t.Errorf("row 0 = %q, want %q", got, "Char: A")
	}

	a.Handle(keypad.KeySend)
	if r.display.Text() != [2]string{} {
		t.Errorf("display should be cleared after send, got %q", r.display.Text())
	}

	// ".-" keys the buzzer twice.
	highs := 0
	for _, e := range r.buzzer.Edges() {
		if e.High {
			highs++
		}
	}
	if highs != 2 {
		t.Errorf("buzzer high edges = %d, want 2", highs)
	}
	if !strings.Contains(logBuf.String(), "Sent A") {
		t.Errorf("log should record the send\ngot:\n%s", logBuf.String())
	}

	if r.recorder.Count() == 0 {
		t.Error("recorder should have captured ops")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ops, err := trace.LoadFile(cfg.Trace.Path)
	if err != nil {
		t.Fatal(err)
	}
	st := trace.Replay(ops, r.display)
	if st.Transactions == 0 {
		t.Error("replay should see bus transactions")
	}
	if st.PinEdges["buzzer"] != 4 {
		t.Errorf("buzzer edges in trace = %d, want 4", st.PinEdges["buzzer"])
	}
}

type errCloser struct{ err error }

func (c errCloser) Close() error { return c.err }

func TestRigClose_JoinsErrors(t *testing.T) {
	e1 := errors.New("first")
	e2 := errors.New("second")
	r := &rig{closers: []io.Closer{errCloser{e1}, errCloser{nil}, errCloser{e2}}}

	err := r.Close()
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Errorf("Close() = %v, want both errors", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}
