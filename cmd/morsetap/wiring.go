package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/app"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/audio"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/config"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal/periph"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal/sim"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/keypad"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/lcd"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/morse"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/trace"
)

// rig is a board plus everything that has to be released with it. The sim
// fields are only set for the sim backend.
type rig struct {
	board   *hal.Board
	closers []io.Closer

	matrix  *sim.Matrix
	display *sim.Display
	buzzer  *sim.Pin

	recorder *trace.Recorder
}

// Close releases every resource in reverse order of acquisition.
func (r *rig) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// buildRig opens the configured backend, then layers tracing and host audio
// over its bus and buzzer.
func buildRig(cfg *config.Config) (*rig, error) {
	r := &rig{}

	switch cfg.Board.Backend {
	case config.BackendPeriph:
		opts := periph.Options{BusName: cfg.Bus.Name, Buzzer: cfg.Pins.Buzzer}
		copy(opts.Rows[:], cfg.Pins.Rows)
		copy(opts.Cols[:], cfg.Pins.Cols)
		board, closer, err := periph.Open(opts)
		if err != nil {
			return nil, err
		}
		r.board = board
		r.closers = append(r.closers, closer)
	case config.BackendSim:
		buildSim(r, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Board.Backend)
	}

	if cfg.Trace.Path != "" {
		rec, err := trace.Create(cfg.Trace.Path, r.board.Clock)
		if err != nil {
			_ = r.Close()
			return nil, err
		}
		r.recorder = rec
		r.closers = append(r.closers, rec)
		r.board.Bus = rec.Bus(r.board.Bus)
		r.board.Buzzer = rec.Pin("buzzer", r.board.Buzzer)
	}

	if cfg.Audio.Enabled {
		b := audio.New(audio.Options{ToneHz: cfg.Audio.ToneHz, Volume: cfg.Audio.Volume})
		if err := b.Start(); err != nil {
			log.Printf("warning: audio disabled: %v", err)
		} else {
			r.closers = append(r.closers, b)
			r.board.Buzzer = hal.MultiPin{r.board.Buzzer, b}
		}
	}

	if err := r.board.Validate(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

func buildSim(r *rig, cfg *config.Config) {
	clock := sim.NewClock(time.Now())
	clock.Realtime = cfg.Board.Realtime

	r.display = sim.NewDisplay(uint8(cfg.Bus.Address))
	bus := sim.NewBus(r.display)
	if cfg.Bus.PollBudget > 0 {
		bus.PollBudget = cfg.Bus.PollBudget
	}
	r.matrix = sim.NewMatrix(clock)
	r.buzzer = sim.NewPin("buzzer", clock)

	r.board = &hal.Board{
		Buzzer: r.buzzer,
		Rows:   r.matrix.Rows(),
		Cols:   r.matrix,
		Bus:    bus,
		Clock:  clock,
	}
}

// buildKeys returns the configured key source. interrupt is called when the
// console source sees Ctrl+C, since raw mode suppresses SIGINT.
func buildKeys(cfg *config.Config, r *rig, interrupt func()) (keypad.Source, error) {
	switch cfg.Keypad.Source {
	case config.SourceMatrix:
		return keypad.NewScanner(r.board, cfg.Keypad.StuckTimeout()), nil
	case config.SourceSerial:
		src, err := keypad.OpenSerial(cfg.Keypad.SerialPort, cfg.Keypad.Baud)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, src)
		return src, nil
	case config.SourceConsole:
		src, err := keypad.OpenConsole(os.Stdin)
		if err != nil {
			return nil, err
		}
		src.OnInterrupt = interrupt
		r.closers = append(r.closers, src)
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported key source %q", cfg.Keypad.Source)
	}
}

// buildApp wires the display driver, the player and keys into the
// controller. Events go to events when it is non-nil.
func buildApp(cfg *config.Config, r *rig, keys keypad.Source, events chan<- app.Event, logw io.Writer) *app.App {
	display := lcd.New(r.board.Bus, r.board.Clock, lcd.Config{
		Address: uint8(cfg.Bus.Address),
		Retries: cfg.Bus.Retries,
	})
	return &app.App{
		Display: display,
		Keys:    keys,
		Player:  &morse.Player{Pin: r.board.Buzzer, Clock: r.board.Clock},
		Clock:   r.board.Clock,
		Events:  events,
		Log:     logw,
	}
}
