package app

// State is the application's position in the compose/send cycle.
type State int

const (
	StateIdle      State = iota // Nothing pending
	StateComposing              // Accumulating taps for one character
	StateSending                // Showing and playing the confirmed character
	StateCleared                // Transient, on the way back to idle
)

// validTransitions defines the allowed State transitions.
var validTransitions = map[State][]State{
	StateIdle:      {StateComposing, StateCleared},
	StateComposing: {StateSending, StateCleared},
	StateSending:   {StateIdle, StateCleared},
	StateCleared:   {StateIdle},
}

// CanTransitionTo reports whether moving from s to next is valid.
func (s State) CanTransitionTo(next State) bool {
	for _, valid := range validTransitions[s] {
		if valid == next {
			return true
		}
	}
	return false
}

// Label returns a short uppercase label for the state.
func (s State) Label() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateComposing:
		return "COMPOSING"
	case StateSending:
		return "SENDING"
	case StateCleared:
		return "CLEARED"
	default:
		return "UNKNOWN"
	}
}

// String implements fmt.Stringer.
func (s State) String() string { return s.Label() }
