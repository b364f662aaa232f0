package tui

import (
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/app"
)

// eventMsg wraps an app.Event.
type eventMsg app.Event

// doneMsg signals the event channel closed.
type doneMsg struct{}

// tickMsg drives the display and buzzer refresh.
type tickMsg time.Time
