// Package config parses morsetap.toml device configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Load.
const FileName = "morsetap.toml"

// DefaultAccentColor is the default TUI accent color (amber, like a backlit LCD).
const DefaultAccentColor = "#F4A300"

// Board backends.
const (
	BackendAuto   = "auto"
	BackendSim    = "sim"
	BackendPeriph = "periph"
)

// Key sources.
const (
	SourceMatrix  = "matrix"
	SourceSerial  = "serial"
	SourceConsole = "console"
)

// ErrNotFound is returned by Load when no morsetap.toml exists in the working
// directory or any of its parents.
var ErrNotFound = errors.New("config: " + FileName + " not found")

// hexColorRe matches a 6-digit hex color string like "#F4A300".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config is the top-level morsetap.toml configuration.
type Config struct {
	Board  BoardConfig  `toml:"board"`
	Bus    BusConfig    `toml:"bus"`
	Pins   PinsConfig   `toml:"pins"`
	Keypad KeypadConfig `toml:"keypad"`
	Audio  AudioConfig  `toml:"audio"`
	TUI    TUIConfig    `toml:"tui"`
	Trace  TraceConfig  `toml:"trace"`
}

// BoardConfig selects the hardware backend.
type BoardConfig struct {
	Backend  string `toml:"backend"`  // auto, sim or periph
	Realtime bool   `toml:"realtime"` // sim only: delays sleep in wall time
}

// BusConfig describes the display bus.
type BusConfig struct {
	Name       string `toml:"name"`        // periph bus name; empty = first available
	Address    int    `toml:"address"`     // 7-bit expander address
	Retries    int    `toml:"retries"`     // extra attempts per nibble after a timeout
	PollBudget int    `toml:"poll_budget"` // sim only: completion polls before timing out
}

// PinsConfig names the GPIO lines used by the periph backend.
type PinsConfig struct {
	Buzzer string   `toml:"buzzer"`
	Rows   []string `toml:"rows"`
	Cols   []string `toml:"cols"`
}

// KeypadConfig selects where keys come from.
type KeypadConfig struct {
	Source         string `toml:"source"` // matrix, serial or console
	SerialPort     string `toml:"serial_port"`
	Baud           int    `toml:"baud"`
	StuckTimeoutMS int    `toml:"stuck_timeout_ms"`
}

// StuckTimeout returns the release wait limit as a duration.
func (k KeypadConfig) StuckTimeout() time.Duration {
	return time.Duration(k.StuckTimeoutMS) * time.Millisecond
}

// AudioConfig controls the host tone that mirrors the buzzer.
type AudioConfig struct {
	Enabled bool    `toml:"enabled"`
	ToneHz  float64 `toml:"tone_hz"`
	Volume  float64 `toml:"volume"`
}

// TUIConfig controls the simulator appearance.
type TUIConfig struct {
	AccentColor string `toml:"accent_color"`
}

// TraceConfig controls bus and pin capture.
type TraceConfig struct {
	Path string `toml:"path"` // JSONL capture file; empty = disabled
}

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	switch c.Board.Backend {
	case BackendAuto, BackendSim, BackendPeriph:
	default:
		errs = append(errs, fmt.Errorf("board.backend must be one of auto, sim, periph (got %q)", c.Board.Backend))
	}

	if c.Bus.Address < 0x03 || c.Bus.Address > 0x77 {
		errs = append(errs, fmt.Errorf("bus.address must be a 7-bit address in 0x03..0x77 (got %#x)", c.Bus.Address))
	}
	if c.Bus.Retries < 0 {
		errs = append(errs, fmt.Errorf("bus.retries must be >= 0"))
	}
	if c.Bus.PollBudget <= 0 {
		errs = append(errs, fmt.Errorf("bus.poll_budget must be > 0"))
	}

	if c.Board.Backend == BackendPeriph {
		if c.Pins.Buzzer == "" {
			errs = append(errs, fmt.Errorf("pins.buzzer must be set for the periph backend"))
		}
		if len(c.Pins.Rows) != 4 || hasEmpty(c.Pins.Rows) {
			errs = append(errs, fmt.Errorf("pins.rows must name exactly 4 pins"))
		}
		if len(c.Pins.Cols) != 4 || hasEmpty(c.Pins.Cols) {
			errs = append(errs, fmt.Errorf("pins.cols must name exactly 4 pins"))
		}
	}

	switch c.Keypad.Source {
	case SourceMatrix, SourceConsole:
	case SourceSerial:
		if c.Keypad.SerialPort == "" {
			errs = append(errs, fmt.Errorf("keypad.serial_port must be set when keypad.source is serial"))
		}
	default:
		errs = append(errs, fmt.Errorf("keypad.source must be one of matrix, serial, console (got %q)", c.Keypad.Source))
	}
	if c.Keypad.Baud <= 0 {
		errs = append(errs, fmt.Errorf("keypad.baud must be > 0"))
	}
	if c.Keypad.StuckTimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("keypad.stuck_timeout_ms must be > 0"))
	}

	if c.Audio.Enabled {
		if c.Audio.ToneHz < 20 || c.Audio.ToneHz > 20000 {
			errs = append(errs, fmt.Errorf("audio.tone_hz must be within 20..20000"))
		}
		if c.Audio.Volume <= 0 || c.Audio.Volume > 1 {
			errs = append(errs, fmt.Errorf("audio.volume must be within (0, 1]"))
		}
	}

	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. \"#F4A300\")"))
	}

	return errors.Join(errs...)
}

func hasEmpty(names []string) bool {
	for _, n := range names {
		if n == "" {
			return true
		}
	}
	return false
}

// Defaults returns a Config that runs the simulated board with the matrix
// keypad and the standard expander address.
func Defaults() Config {
	return Config{
		Board: BoardConfig{
			Backend:  BackendAuto,
			Realtime: true,
		},
		Bus: BusConfig{
			Address:    0x20,
			Retries:    2,
			PollBudget: 200000,
		},
		Pins: PinsConfig{
			Buzzer: "GPIO18",
			Rows:   []string{"GPIO5", "GPIO6", "GPIO13", "GPIO19"},
			Cols:   []string{"GPIO12", "GPIO16", "GPIO20", "GPIO21"},
		},
		Keypad: KeypadConfig{
			Source:         SourceMatrix,
			Baud:           9600,
			StuckTimeoutMS: 2000,
		},
		Audio: AudioConfig{
			Enabled: true,
			ToneHz:  700,
			Volume:  0.3,
		},
		TUI: TUIConfig{
			AccentColor: DefaultAccentColor,
		},
	}
}

// Load reads morsetap.toml from the given path. If path is empty, it walks up
// from the current working directory looking for morsetap.toml and returns an
// error wrapping ErrNotFound if there is none. Returns an error if the file
// contains unknown keys (likely typos). An auto backend is resolved against
// the host filesystem.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := findConfig()
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := Defaults()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s (possible typos?)", path, joinKeys(keys))
	}

	cfg.ResolveBackend("/")
	return &cfg, nil
}

// joinKeys formats a slice of key names for display.
func joinKeys(keys []string) string {
	return strings.Join(keys, ", ")
}

// findConfig walks up from the current directory looking for morsetap.toml.
func findConfig() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("config: get working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w (searched up from %s)", ErrNotFound, dir)
		}
		dir = parent
	}
}

// InitFile writes a default morsetap.toml template to the given directory.
func InitFile(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: %s already exists at %s", FileName, path)
	}

	content := `# morsetap.toml: MorseTap device configuration

[board]
backend = "auto"  # auto, sim or periph; auto picks periph when GPIO is present
realtime = true   # sim only: delays take wall-clock time

[bus]
name = ""           # periph bus name, e.g. "/dev/i2c-1" (empty = first available)
address = 0x20      # 7-bit PCF8574 address
retries = 2         # extra attempts per nibble after a bus timeout
poll_budget = 200000

[pins]
buzzer = "GPIO18"
rows = ["GPIO5", "GPIO6", "GPIO13", "GPIO19"]
cols = ["GPIO12", "GPIO16", "GPIO20", "GPIO21"]

[keypad]
source = "matrix"        # matrix, serial or console
serial_port = ""         # e.g. "/dev/ttyUSB0" when source = "serial"
baud = 9600
stuck_timeout_ms = 2000  # a key held longer than this is dropped

[audio]
enabled = true  # mirror the buzzer as a tone on the host speaker
tone_hz = 700
volume = 0.3

[tui]
accent_color = "#F4A300"  # hex color for header/accent elements

[trace]
path = ""  # JSONL capture of bus and pin activity (empty = disabled)
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}
