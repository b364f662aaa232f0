package morse

import (
	"fmt"
	"time"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal"
)

// DotDuration is the calibrated length of one dot. Every other interval is a
// fixed multiple of it: a dash and the gap after a letter are three dots, the
// gap after each symbol is one.
const DotDuration = 100 * time.Millisecond

const (
	dashDuration = 3 * DotDuration
	symbolGap    = DotDuration
	letterGap    = 3 * DotDuration
)

// Player keys a single output through a code. Play blocks for the whole
// transmission and cannot be interrupted.
type Player struct {
	Pin   hal.Pin
	Clock hal.Clock
}

// Play emits code followed by the inter-letter gap. If the pin fails,
// playback stops, the pin is driven low best-effort and the error returned.
func (p *Player) Play(code Code) error {
	for _, s := range code.Symbols() {
		on := DotDuration
		if s == Dash {
			on = dashDuration
		}
		if err := p.Pin.Set(true); err != nil {
			_ = p.Pin.Set(false)
			return fmt.Errorf("morse: key %c: %w", s, err)
		}
		p.Clock.Delay(on)
		if err := p.Pin.Set(false); err != nil {
			return fmt.Errorf("morse: release %c: %w", s, err)
		}
		p.Clock.Delay(symbolGap)
	}
	p.Clock.Delay(letterGap)
	return nil
}

// Duration returns how long Play blocks for code.
func Duration(code Code) time.Duration {
	var d time.Duration
	for _, s := range code.Symbols() {
		if s == Dash {
			d += dashDuration
		} else {
			d += DotDuration
		}
		d += symbolGap
	}
	return d + letterGap
}
