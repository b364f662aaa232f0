package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/app"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/config"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal/sim"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/lcd"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/morse"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/trace"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/tui"
)

// loadConfig reads the config named by --config, or the nearest
// morsetap.toml. Without either, the built-in defaults are used. Command
// flags that are set override the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if errors.Is(err, config.ErrNotFound) && path == "" {
		d := config.Defaults()
		cfg, err = &d, nil
	}
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"backend", &cfg.Board.Backend},
		{"source", &cfg.Keypad.Source},
		{"trace", &cfg.Trace.Path},
	}
	for _, o := range overrides {
		if f := cmd.Flags().Lookup(o.flag); f != nil && f.Changed {
			*o.dst = f.Value.String()
		}
	}
	cfg.ResolveBackend("/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// executeRun runs the transmitter headless with events printed to stdout.
func executeRun(cfg *config.Config) error {
	ctx, cancel := signalContext()
	defer cancel()

	r, err := buildRig(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	keys, err := buildKeys(cfg, r, cancel)
	if err != nil {
		return err
	}
	registerQuitHandler(func() {
		_ = r.board.Buzzer.Set(false)
		_ = r.Close()
	})

	var out io.Writer = os.Stdout
	if cfg.Keypad.Source == config.SourceConsole {
		// Raw mode disables output post-processing.
		out = crlfWriter{w: os.Stdout}
	}

	events := make(chan app.Event, 128)
	a := buildApp(cfg, r, keys, events, out)

	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for e := range events {
			fmt.Fprintln(out, formatEvent(e))
		}
	}()

	err = a.Run(ctx)
	close(events)
	<-drainDone

	if r.recorder != nil {
		fmt.Fprintf(out, "Trace: %d ops written to %s\n", r.recorder.Count(), cfg.Trace.Path)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// executeSim runs the transmitter on the simulated board under the TUI. The
// app runs on its own goroutine; the TUI only presses keys on the emulated
// matrix and reads the emulated display.
func executeSim(cfg *config.Config) error {
	cfg.Board.Backend = config.BackendSim
	cfg.Board.Realtime = true
	cfg.Keypad.Source = config.SourceMatrix

	ctx, cancel := signalContext()
	defer cancel()

	r, err := buildRig(cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	keys, err := buildKeys(cfg, r, cancel)
	if err != nil {
		return err
	}

	events := make(chan app.Event, 128)
	a := buildApp(cfg, r, keys, events, io.Discard)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		close(events)
	}()

	dev := tui.SimDevice{Matrix: r.matrix, Display: r.display, Buzzer: r.buzzer}
	model := tui.New(events, dev, cfg.TUI.AccentColor)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, tuiErr := program.Run()
	cancel()
	runErr := <-errCh

	if tuiErr != nil {
		return fmt.Errorf("tui: %w", tuiErr)
	}
	if r.recorder != nil {
		fmt.Printf("Trace: %d ops written to %s\n", r.recorder.Count(), cfg.Trace.Path)
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// executeTrace prints a capture, replays it into an emulated display at addr
// and prints the resulting screen.
func executeTrace(w io.Writer, path string, addr uint8, quiet bool) error {
	ops, err := trace.LoadFile(path)
	if err != nil {
		return err
	}
	if !quiet {
		for _, op := range ops {
			fmt.Fprintln(w, op.String())
		}
		fmt.Fprintln(w)
	}

	d := sim.NewDisplay(addr)
	st := trace.Replay(ops, d)

	fmt.Fprintf(w, "Transactions: %d\n", st.Transactions)
	fmt.Fprintf(w, "Bytes:        %d\n", st.Bytes)
	fmt.Fprintf(w, "Errors:       %d\n", st.Errors)
	for _, name := range sortedKeys(st.PinEdges) {
		fmt.Fprintf(w, "Pin %-9s %d edges\n", name+":", st.PinEdges[name])
	}

	screen := d.Snapshot()
	border := "+" + strings.Repeat("-", lcd.Cols) + "+"
	fmt.Fprintln(w, border)
	for _, line := range screen.Lines {
		fmt.Fprintf(w, "|%-*s|\n", lcd.Cols, line)
	}
	fmt.Fprintln(w, border)
	return nil
}

// formatTable renders the code table in four columns.
func formatTable(entries []morse.Entry) string {
	const perRow = 4
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%c  %-8s", e.Char, e.Code)
		if (i+1)%perRow == 0 || i == len(entries)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString("  ")
		}
	}
	return b.String()
}

// formatEvent formats an event for plain-text output.
func formatEvent(e app.Event) string {
	ts := e.Timestamp.Format("15:04:05")
	if e.Timestamp.IsZero() {
		ts = time.Now().Format("15:04:05")
	}
	return fmt.Sprintf("[%s]  %-11s %s", ts, e.Kind.Label(), e.Message)
}

// crlfWriter turns "\n" into "\r\n" for terminals in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	s := strings.ReplaceAll(string(p), "\n", "\r\n")
	if _, err := io.WriteString(c.w, s); err != nil {
		return 0, err
	}
	return len(p), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
