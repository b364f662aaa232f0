// Package audio renders the buzzer output as a tone on the host's sound
// device, so a simulated transmission can be heard.
package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Defaults for Options.
const (
	DefaultToneHz = 700
	DefaultVolume = 0.3
)

// Options configures the tone.
type Options struct {
	ToneHz float64 // 0 uses DefaultToneHz
	Volume float64 // 0..1; 0 uses DefaultVolume
}

// Buzzer is a hal.Pin that gates a continuous sine tone. Driving it high
// unpauses the tone, driving it low pauses it. Until Start succeeds it only
// tracks the level, which keeps it usable on machines without audio.
type Buzzer struct {
	mu      sync.Mutex
	ctrl    *beep.Ctrl
	started bool
}

// New returns a silent buzzer.
func New(opts Options) *Buzzer {
	if opts.ToneHz <= 0 {
		opts.ToneHz = DefaultToneHz
	}
	if opts.Volume <= 0 {
		opts.Volume = DefaultVolume
	}
	tone := NewTone(sampleRate, opts.ToneHz, opts.Volume)
	return &Buzzer{ctrl: &beep.Ctrl{Streamer: tone, Paused: true}}
}

// Start opens the speaker and begins streaming the gated tone.
func (b *Buzzer) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(20*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: init speaker: %w", err)
	}
	speaker.Play(b.ctrl)
	b.started = true
	return nil
}

// Set implements hal.Pin.
func (b *Buzzer) Set(high bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	b.ctrl.Paused = !high
	return nil
}

// High reports whether the tone is gated on.
func (b *Buzzer) High() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return !b.ctrl.Paused
}

// Close silences the tone and releases the speaker.
func (b *Buzzer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	b.started = false
	return nil
}

// Tone is an endless sine wave. Its phase carries across Stream calls so
// that gating it on and off does not restart the waveform.
type Tone struct {
	sr     beep.SampleRate
	freq   float64
	volume float64
	pos    int
}

// NewTone returns a sine generator at freq Hz with peak amplitude volume.
func NewTone(sr beep.SampleRate, freq, volume float64) *Tone {
	return &Tone{sr: sr, freq: freq, volume: volume}
}

func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		s := t.volume * math.Sin(2*math.Pi*t.freq*float64(t.pos)/float64(t.sr))
		samples[i][0] = s
		samples[i][1] = s
		t.pos++
		if t.pos == int(t.sr) {
			t.pos = 0
		}
	}
	return len(samples), true
}

func (t *Tone) Err() error {
	return nil
}
