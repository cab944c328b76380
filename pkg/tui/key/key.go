// ABOUTME: Key describes what a single input event means: rune, named key, paste, mouse, or report.
// ABOUTME: Parse classifies event bytes; control bytes become Ctrl+letter, ESC-prefixed bytes go to the CSI/SS3 tables.

package key

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Key represents a parsed keyboard input event.
type Key struct {
	Type  KeyType
	Rune  rune // For KeyRune; the letter for Ctrl combinations
	F     int  // Function key number for KeyFunction
	Alt   bool
	Ctrl  bool
	Shift bool
}

// KeyType enumerates the kinds of input a single event can carry.
type KeyType int

const (
	KeyRune      KeyType = iota // Printable character or Ctrl+letter
	KeyEnter                    // Enter / Return
	KeyTab                      // Tab
	KeyBackTab                  // Shift+Tab
	KeyBackspace                // Backspace / DEL (0x7F)
	KeyDelete                   // Delete key
	KeyInsert                   // Insert key
	KeyUp                       // Arrow up
	KeyDown                     // Arrow down
	KeyLeft                     // Arrow left
	KeyRight                    // Arrow right
	KeyHome                     // Home
	KeyEnd                      // End
	KeyPageUp                   // Page Up
	KeyPageDown                 // Page Down
	KeyEscape                   // Escape
	KeyFunction                 // F1..F20
	KeyPaste                    // Bracketed paste
	KeyMouse                    // Mouse report
	KeyFocus                    // Focus in/out report
	KeyReport                   // Terminal reply (OSC, DCS, DSR, DA)
	KeyUnknown                  // Unrecognized input
)

// Common keys for comparisons.
var (
	CtrlC = Key{Type: KeyRune, Rune: 'c', Ctrl: true}
	CtrlD = Key{Type: KeyRune, Rune: 'd', Ctrl: true}
)

// Parse classifies the bytes of one input event.
func Parse(data []byte) Key {
	return ParseKey(string(data))
}

// ParseKey classifies raw terminal input data.
// It handles single runes, control characters, and escape sequences.
func ParseKey(data string) Key {
	if len(data) == 0 {
		return Key{Type: KeyUnknown}
	}

	// Single-byte fast path
	if len(data) == 1 {
		return parseSingleByte(data[0])
	}

	// Escape sequence path
	if data[0] == 0x1b {
		return parseEscapeSequence(data)
	}

	// Multi-byte UTF-8 rune (or grapheme cluster; report its first rune)
	r, _ := utf8.DecodeRuneInString(data)
	if r == utf8.RuneError {
		return Key{Type: KeyUnknown}
	}
	return Key{Type: KeyRune, Rune: r}
}

// parseSingleByte handles a single-byte input (ASCII or control character).
func parseSingleByte(b byte) Key {
	switch {
	case b == 0x0d, b == 0x0a:
		return Key{Type: KeyEnter}
	case b == 0x09:
		return Key{Type: KeyTab}
	case b == 0x7f, b == 0x08:
		return Key{Type: KeyBackspace}
	case b == 0x1b:
		return Key{Type: KeyEscape}
	case b == 0x00:
		return Key{Type: KeyRune, Rune: ' ', Ctrl: true}
	case b >= 0x01 && b <= 0x1a:
		return Key{Type: KeyRune, Rune: rune('a' + b - 1), Ctrl: true}
	case b >= 0x20 && b <= 0x7e:
		return Key{Type: KeyRune, Rune: rune(b)}
	}
	return Key{Type: KeyUnknown}
}

// parseEscapeSequence classifies ESC-prefixed data.
func parseEscapeSequence(data string) Key {
	switch data[1] {
	case '[':
		return parseCSI(data)
	case 'O':
		if k, ok := ss3Keys[data[2:]]; ok && len(data) == 3 {
			return k
		}
		return Key{Type: KeyUnknown}
	case ']', 'P', '_', '^', 'X':
		return Key{Type: KeyReport}
	}

	// Alt+key: ESC followed by one key
	inner := ParseKey(data[1:])
	if inner.Type == KeyUnknown || inner.Type == KeyEscape {
		return Key{Type: KeyUnknown}
	}
	inner.Alt = true
	return inner
}

// keyTypeNames provides human-readable labels for each KeyType.
var keyTypeNames = map[KeyType]string{
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackTab:   "BackTab",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	KeyInsert:    "Insert",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyEscape:    "Escape",
	KeyPaste:     "Paste",
	KeyMouse:     "Mouse",
	KeyFocus:     "Focus",
	KeyReport:    "Report",
	KeyUnknown:   "Unknown",
}

// String returns a human-readable representation of the Key for debug display.
func (k Key) String() string {
	var b strings.Builder
	if k.Ctrl {
		b.WriteString("Ctrl+")
	}
	if k.Alt {
		b.WriteString("Alt+")
	}
	if k.Shift && k.Type != KeyBackTab {
		b.WriteString("Shift+")
	}

	switch k.Type {
	case KeyRune:
		if k.Ctrl && k.Rune >= 'a' && k.Rune <= 'z' {
			b.WriteRune(k.Rune - 'a' + 'A')
		} else if k.Rune == ' ' {
			b.WriteString("Space")
		} else {
			b.WriteRune(k.Rune)
		}
	case KeyFunction:
		b.WriteString("F")
		b.WriteString(strconv.Itoa(k.F))
	default:
		name, ok := keyTypeNames[k.Type]
		if !ok {
			name = "Unknown"
		}
		b.WriteString(name)
	}
	return b.String()
}
