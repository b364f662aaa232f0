package keypad

// cycles maps a key to the characters it steps through on repeated taps.
// Keys without an entry resolve to their own symbol.
var cycles = map[Key]string{
	'0': " ",
	'1': "1",
	'2': "ABC2",
	'3': "DEF3",
	'4': "GHI4",
	'5': "JKL5",
	'6': "MNO6",
	'7': "PQRS7",
	'8': "TUV8",
	'9': "WXYZ9",
}

// Cycle returns the characters key k steps through, in tap order.
func Cycle(k Key) string {
	if c, ok := cycles[k]; ok {
		return c
	}
	return string(rune(k))
}

// Session is the composition state carried between key presses. The zero
// value is an empty session.
type Session struct {
	LastKey  Key
	TapIndex int
	Pending  rune // 0 when nothing is pending
}

// HasPending reports whether a character is waiting to be sent.
func (s Session) HasPending() bool {
	return s.Pending != 0
}

// Resolve applies one key press to s and returns the updated session. A
// repeat of the last key advances the tap index; any other key starts over at
// index 0. The send and clear keys must be handled by the caller.
func Resolve(s Session, k Key) Session {
	if k == s.LastKey && s.LastKey != NoKey {
		s.TapIndex++
	} else {
		s.LastKey = k
		s.TapIndex = 0
	}
	cycle := Cycle(k)
	s.Pending = rune(cycle[s.TapIndex%len(cycle)])
	return s
}
