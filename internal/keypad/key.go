// Package keypad scans the 4x4 key matrix and resolves multi-tap presses
// into characters.
package keypad

// Key is one of the 16 keypad symbols. The zero value means no key.
type Key byte

// NoKey is returned by a scan that observed no press.
const NoKey Key = 0

// Keys intercepted by the application before multi-tap decoding.
const (
	KeySend  Key = '='
	KeyClear Key = 'C'
)

// Layout is the physical matrix, row 0 at the top, column 0 on the left.
var Layout = [4][4]Key{
	{'7', '8', '9', '/'},
	{'4', '5', '6', '*'},
	{'1', '2', '3', '-'},
	{'C', '0', '=', '+'},
}

// Position returns the matrix row and column of k.
func Position(k Key) (row, col int, ok bool) {
	for r, keys := range Layout {
		for c, v := range keys {
			if v == k {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// Valid reports whether k is one of the 16 symbols.
func (k Key) Valid() bool {
	_, _, ok := Position(k)
	return ok
}

// IsDigit reports whether k is 0-9.
func (k Key) IsDigit() bool {
	return k >= '0' && k <= '9'
}

// String returns the symbol, or "none" for NoKey.
func (k Key) String() string {
	if k == NoKey {
		return "none"
	}
	return string(rune(k))
}

// FromByte maps a character typed on a terminal or received over a serial
// line to a key. Lowercase c is accepted for clear.
func FromByte(b byte) (Key, bool) {
	if b == 'c' {
		return KeyClear, true
	}
	k := Key(b)
	if !k.Valid() {
		return NoKey, false
	}
	return k, true
}
