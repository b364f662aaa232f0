package tui

// Minimum terminal size.
const (
	MinWidth  = 60
	MinHeight = 22
)

// deviceHeight is the keypad grid (4 rows of keys and letters) plus its border.
const deviceHeight = 10

// Rect represents a rectangular region of the terminal.
type Rect struct {
	X, Y, Width, Height int
}

// Layout holds the computed panel geometry for a given terminal size.
type Layout struct {
	Header, Footer Rect
	Device         Rect // display, buzzer lamp and keypad
	Tabs           Rect
	Body           Rect // event log or code table
	TooSmall       bool // true when terminal is below MinWidth×MinHeight
}

// Calculate computes the panel layout for a terminal of the given dimensions:
// one header row, the device row, a tab row, the body, one footer row.
func Calculate(width, height int) Layout {
	if width < MinWidth || height < MinHeight {
		return Layout{TooSmall: true}
	}

	bodyY := 1 + deviceHeight + 1
	bodyH := height - bodyY - 1

	return Layout{
		Header: Rect{X: 0, Y: 0, Width: width, Height: 1},
		Device: Rect{X: 0, Y: 1, Width: width, Height: deviceHeight},
		Tabs:   Rect{X: 0, Y: 1 + deviceHeight, Width: width, Height: 1},
		Body:   Rect{X: 0, Y: bodyY, Width: width, Height: bodyH},
		Footer: Rect{X: 0, Y: height - 1, Width: width, Height: 1},
	}
}
