// Package morse translates characters to International Morse code and plays
// codes on a digital output with standard timing.
package morse

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrUnsupported is returned by Lookup for characters without a code.
var ErrUnsupported = errors.New("morse: unsupported character")

// Symbol is one element of a code.
type Symbol byte

const (
	Dot  Symbol = '.'
	Dash Symbol = '-'
)

// Code is a sequence of dots and dashes, e.g. ".-".
type Code string

// Symbols returns the code's elements. Characters other than dot and dash
// are skipped.
func (c Code) Symbols() []Symbol {
	out := make([]Symbol, 0, len(c))
	for i := 0; i < len(c); i++ {
		switch s := Symbol(c[i]); s {
		case Dot, Dash:
			out = append(out, s)
		}
	}
	return out
}

var letters = [26]Code{
	".-", "-...", "-.-.", "-..", ".", "..-.", "--.", "....", "..", ".---",
	"-.-", ".-..", "--", "-.", "---", ".--.", "--.-", ".-.", "...", "-",
	"..-", "...-", ".--", "-..-", "-.--", "--..",
}

var digits = [10]Code{
	"-----", ".----", "..---", "...--", "....-",
	".....", "-....", "--...", "---..", "----.",
}

// Lookup returns the code for c. Lowercase letters are folded to upper case.
func Lookup(c rune) (Code, error) {
	c = unicode.ToUpper(c)
	switch {
	case c >= 'A' && c <= 'Z':
		return letters[c-'A'], nil
	case c >= '0' && c <= '9':
		return digits[c-'0'], nil
	}
	return "", fmt.Errorf("%w %q", ErrUnsupported, c)
}

// Entry is one row of the table.
type Entry struct {
	Char rune
	Code Code
}

// Table returns every supported character with its code, letters first.
func Table() []Entry {
	out := make([]Entry, 0, len(letters)+len(digits))
	for i, code := range letters {
		out = append(out, Entry{Char: rune('A' + i), Code: code})
	}
	for i, code := range digits {
		out = append(out, Entry{Char: rune('0' + i), Code: code})
	}
	return out
}
