// Package app runs the compose/send cycle: it polls a key source, folds taps
// into a pending character, and on confirmation shows and plays its Morse code.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/keypad"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/morse"
)

// Screen timing.
const (
	BannerHold = time.Second
	SendHold   = 500 * time.Millisecond
	IdlePoll   = 2 * time.Millisecond
)

// Banner lines shown once at boot.
const (
	BannerTop    = "Morse System"
	BannerBottom = "Ready"
)

// Display is the character display the app writes to.
// *lcd.Driver satisfies this interface.
type Display interface {
	Clear() error
	SetCursor(row, col int) error
	WriteText(s string) error
}

// Initializer is implemented by displays that need a power-on sequence.
type Initializer interface {
	Init() error
}

// Transmitter plays a Morse code. *morse.Player satisfies this interface.
type Transmitter interface {
	Play(code morse.Code) error
}

// App owns the display, the key source and the transmitter. All of its
// methods must be called from a single goroutine.
type App struct {
	Display Display
	Keys    keypad.Source
	Player  Transmitter
	Clock   hal.Clock
	Events  chan<- Event // optional; when nil events are logged to Log
	Log     io.Writer    // defaults to os.Stdout

	state   State
	session keypad.Session
}

// State returns the current state.
func (a *App) State() State { return a.state }

// Session returns the current multi-tap session.
func (a *App) Session() keypad.Session { return a.session }

// Run boots the display and polls for keys until ctx is cancelled. Failures
// inside the loop are reported as events and never end it.
func (a *App) Run(ctx context.Context) error {
	a.Boot()
	for {
		select {
		case <-ctx.Done():
			a.emit(Event{Kind: EventStopped, Message: fmt.Sprintf("Stopped: %v", ctx.Err())})
			return ctx.Err()
		default:
		}
		if !a.Step() {
			a.Clock.Delay(IdlePoll)
		}
	}
}

// Boot initializes the display and shows the banner for BannerHold.
func (a *App) Boot() {
	a.state = StateIdle
	a.session = keypad.Session{}

	if ini, ok := a.Display.(Initializer); ok {
		if err := ini.Init(); err != nil {
			a.report("Display init failed", err)
		}
	}
	a.refresh(BannerTop, BannerBottom)
	a.Clock.Delay(BannerHold)
	a.refresh()
	a.emit(Event{Kind: EventInfo, Message: "Ready"})
}

// Step performs one scan and handles the key if there was one. It reports
// whether a key was handled.
func (a *App) Step() bool {
	k, err := a.Keys.Scan()
	if err != nil {
		a.report("Key scan failed", err)
	}
	if k == keypad.NoKey {
		return false
	}
	a.Handle(k)
	return true
}

// Handle applies one key to the state machine.
func (a *App) Handle(k keypad.Key) {
	a.emit(Event{Kind: EventKey, Key: k, Message: fmt.Sprintf("Key %s", k)})

	switch k {
	case keypad.KeySend:
		a.send()
	case keypad.KeyClear:
		a.clear()
	default:
		a.compose(k)
	}
}

func (a *App) compose(k keypad.Key) {
	a.session = keypad.Resolve(a.session, k)
	a.transition(StateComposing)

	c := a.session.Pending
	a.refresh(fmt.Sprintf("Char: %c", c))
	a.emit(Event{Kind: EventCompose, Key: k, Char: c, Message: fmt.Sprintf("Pending %c", c)})
}

func (a *App) send() {
	if !a.session.HasPending() {
		a.emit(Event{Kind: EventInfo, Message: "Nothing to send"})
		return
	}

	c := a.session.Pending
	a.transition(StateSending)

	code, err := morse.Lookup(c)
	if err != nil {
		a.refresh(fmt.Sprintf("Sending: %c", c), "No code")
		a.emit(Event{Kind: EventUnsupported, Char: c, Err: err, Message: fmt.Sprintf("No code for %q", c)})
	} else {
		a.refresh(fmt.Sprintf("Sending: %c", c), string(code))
		a.emit(Event{Kind: EventSend, Char: c, Code: code, Message: fmt.Sprintf("Sending %c %s", c, code)})
		if playErr := a.Player.Play(code); playErr != nil {
			a.report("Playback failed", playErr)
		} else {
			a.emit(Event{Kind: EventSent, Char: c, Code: code, Message: fmt.Sprintf("Sent %c", c)})
		}
	}

	a.session = keypad.Session{}
	a.Clock.Delay(SendHold)
	a.flush()
	a.refresh()
	a.transition(StateIdle)
}

func (a *App) clear() {
	discarded := a.session.Pending
	a.transition(StateCleared)
	a.session = keypad.Session{}
	a.refresh()
	a.transition(StateIdle)

	msg := "Cleared"
	if discarded != 0 {
		msg = fmt.Sprintf("Cleared %c", discarded)
	}
	a.emit(Event{Kind: EventClear, Char: discarded, Message: msg})
}

func (a *App) transition(to State) {
	from := a.state
	if from == to {
		return
	}
	if !from.CanTransitionTo(to) {
		a.emit(Event{Kind: EventError, From: from, To: to,
			Message: fmt.Sprintf("Invalid transition %s → %s", from.Label(), to.Label())})
	}
	a.state = to
	a.emit(Event{Kind: EventState, From: from, To: to,
		Message: fmt.Sprintf("%s → %s", from.Label(), to.Label())})
}

// refresh clears the display and writes one line per row. Only the first
// failure is reported.
func (a *App) refresh(lines ...string) {
	err := a.Display.Clear()
	for row, line := range lines {
		if err != nil {
			break
		}
		if line == "" {
			continue
		}
		if err = a.Display.SetCursor(row, 0); err != nil {
			break
		}
		err = a.Display.WriteText(line)
	}
	if err != nil {
		a.report("Display update failed", err)
	}
}

func (a *App) flush() {
	f, ok := a.Keys.(keypad.Flusher)
	if !ok {
		return
	}
	if err := f.Flush(); err != nil {
		a.report("Key flush failed", err)
	}
}

// report emits err with the kind matching its sentinel.
func (a *App) report(msg string, err error) {
	kind := EventError
	switch {
	case errors.Is(err, hal.ErrBusTimeout):
		kind = EventBusTimeout
	case errors.Is(err, keypad.ErrKeyStuck):
		kind = EventKeyStuck
	case errors.Is(err, morse.ErrUnsupported):
		kind = EventUnsupported
	}
	a.emit(Event{Kind: kind, Err: err, Message: fmt.Sprintf("%s: %v", msg, err)})
}

func (a *App) emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = a.now()
	}
	if a.Events == nil {
		a.logf(e)
		return
	}
	select {
	case a.Events <- e:
	default:
	}
}

func (a *App) now() time.Time {
	if a.Clock == nil {
		return time.Now()
	}
	return a.Clock.Now()
}

func (a *App) logf(e Event) {
	w := a.Log
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "[%s]  %s\n", e.Timestamp.Format("15:04:05"), e.Message)
}
