package app

import (
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/keypad"
	"github.com/LISSConsulting/LISSTech.MorseTap/internal/morse"
)

// EventKind identifies the type of an application event.
type EventKind int

const (
	EventInfo        EventKind = iota // General informational message
	EventKey                          // Key observed by the scan layer
	EventState                        // State transition
	EventCompose                      // Pending character changed
	EventSend                         // Transmission starting
	EventSent                         // Transmission finished
	EventClear                        // Composition discarded
	EventUnsupported                  // Confirmed character has no Morse code
	EventBusTimeout                   // Display bus transfer timed out
	EventKeyStuck                     // Key not released within the timeout
	EventError                        // Any other non-fatal failure
	EventStopped                      // Run loop exited
)

// Label returns a short name for the kind.
func (k EventKind) Label() string {
	switch k {
	case EventInfo:
		return "info"
	case EventKey:
		return "key"
	case EventState:
		return "state"
	case EventCompose:
		return "compose"
	case EventSend:
		return "send"
	case EventSent:
		return "sent"
	case EventClear:
		return "clear"
	case EventUnsupported:
		return "unsupported"
	case EventBusTimeout:
		return "bus-timeout"
	case EventKeyStuck:
		return "key-stuck"
	case EventError:
		return "error"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event is a structured record emitted by the App. When App.Events is set,
// events are sent there; otherwise they are written as lines to App.Log.
type Event struct {
	Kind      EventKind
	Timestamp time.Time
	Message   string

	// State transition fields
	From State
	To   State

	// Composition fields
	Key  keypad.Key
	Char rune
	Code morse.Code

	Err error
}
