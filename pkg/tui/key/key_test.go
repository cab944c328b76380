// ABOUTME: Table-driven tests for Key parsing covering ASCII, control chars, and escape sequences.
// ABOUTME: Validates Parse against runes, Ctrl combos, CSI/SS3 keys, modifiers, reports, and String output.

package key

import "testing"

func TestParseKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want Key
	}{
		// Single printable ASCII characters
		{name: "lowercase a", data: "a", want: Key{Type: KeyRune, Rune: 'a'}},
		{name: "uppercase A", data: "A", want: Key{Type: KeyRune, Rune: 'A'}},
		{name: "digit 0", data: "0", want: Key{Type: KeyRune, Rune: '0'}},
		{name: "space", data: " ", want: Key{Type: KeyRune, Rune: ' '}},
		{name: "multibyte rune", data: "\u00e9", want: Key{Type: KeyRune, Rune: '\u00e9'}},
		{name: "invalid utf8", data: "\xff\xfe", want: Key{Type: KeyUnknown}},

		// Control characters
		{name: "ctrl+c", data: "\x03", want: CtrlC},
		{name: "ctrl+d", data: "\x04", want: CtrlD},
		{name: "ctrl+a", data: "\x01", want: Key{Type: KeyRune, Rune: 'a', Ctrl: true}},
		{name: "ctrl+z", data: "\x1a", want: Key{Type: KeyRune, Rune: 'z', Ctrl: true}},
		{name: "ctrl+space", data: "\x00", want: Key{Type: KeyRune, Rune: ' ', Ctrl: true}},

		// Enter, Tab, Backspace
		{name: "enter", data: "\r", want: Key{Type: KeyEnter}},
		{name: "line feed", data: "\n", want: Key{Type: KeyEnter}},
		{name: "tab", data: "\t", want: Key{Type: KeyTab}},
		{name: "backspace", data: "\x7f", want: Key{Type: KeyBackspace}},
		{name: "ctrl+h backspace", data: "\x08", want: Key{Type: KeyBackspace}},
		{name: "escape", data: "\x1b", want: Key{Type: KeyEscape}},

		// Alt combinations
		{name: "alt+x", data: "\x1bx", want: Key{Type: KeyRune, Rune: 'x', Alt: true}},
		{name: "alt+enter", data: "\x1b\r", want: Key{Type: KeyEnter, Alt: true}},
		{name: "alt+ctrl+c", data: "\x1b\x03", want: Key{Type: KeyRune, Rune: 'c', Ctrl: true, Alt: true}},

		// CSI keys
		{name: "arrow up", data: "\x1b[A", want: Key{Type: KeyUp}},
		{name: "arrow right", data: "\x1b[C", want: Key{Type: KeyRight}},
		{name: "home", data: "\x1b[H", want: Key{Type: KeyHome}},
		{name: "end", data: "\x1b[F", want: Key{Type: KeyEnd}},
		{name: "ctrl+up", data: "\x1b[1;5A", want: Key{Type: KeyUp, Ctrl: true}},
		{name: "shift+alt+left", data: "\x1b[1;4D", want: Key{Type: KeyLeft, Shift: true, Alt: true}},
		{name: "backtab", data: "\x1b[Z", want: Key{Type: KeyBackTab, Shift: true}},
		{name: "insert", data: "\x1b[2~", want: Key{Type: KeyInsert}},
		{name: "delete", data: "\x1b[3~", want: Key{Type: KeyDelete}},
		{name: "page up", data: "\x1b[5~", want: Key{Type: KeyPageUp}},
		{name: "ctrl+page down", data: "\x1b[6;5~", want: Key{Type: KeyPageDown, Ctrl: true}},
		{name: "f5", data: "\x1b[15~", want: Key{Type: KeyFunction, F: 5}},
		{name: "f12", data: "\x1b[24~", want: Key{Type: KeyFunction, F: 12}},

		// SS3 keys
		{name: "SS3 up", data: "\x1bOA", want: Key{Type: KeyUp}},
		{name: "SS3 f1", data: "\x1bOP", want: Key{Type: KeyFunction, F: 1}},
		{name: "SS3 keypad enter", data: "\x1bOM", want: Key{Type: KeyEnter}},

		// Kitty CSI u
		{name: "kitty ctrl+a", data: "\x1b[97;5u", want: Key{Type: KeyRune, Rune: 'a', Ctrl: true}},
		{name: "kitty shifted", data: "\x1b[97:65;2u", want: Key{Type: KeyRune, Rune: 'a', Shift: true}},
		{name: "kitty enter", data: "\x1b[13u", want: Key{Type: KeyEnter}},
		{name: "kitty release ignored", data: "\x1b[97;1:3u", want: Key{Type: KeyUnknown}},

		// Non-key events
		{name: "paste", data: "\x1b[200~hi\x1b[201~", want: Key{Type: KeyPaste}},
		{name: "sgr mouse", data: "\x1b[<0;10;5M", want: Key{Type: KeyMouse}},
		{name: "x10 mouse", data: "\x1b[M !!", want: Key{Type: KeyMouse}},
		{name: "focus in", data: "\x1b[I", want: Key{Type: KeyFocus}},
		{name: "cursor report", data: "\x1b[12;40R", want: Key{Type: KeyReport}},
		{name: "private report", data: "\x1b[?62;c", want: Key{Type: KeyReport}},
		{name: "osc reply", data: "\x1b]11;rgb:0/0/0\x07", want: Key{Type: KeyReport}},

		// Unknown
		{name: "unknown csi", data: "\x1b[99Z", want: Key{Type: KeyUnknown}},
		{name: "unknown tilde", data: "\x1b[99~", want: Key{Type: KeyUnknown}},
		{name: "incomplete csi", data: "\x1b[", want: Key{Type: KeyUnknown}},
		{name: "empty", data: "", want: Key{Type: KeyUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseKey(tt.data)
			if got != tt.want {
				t.Errorf("ParseKey(%q) = %+v, want %+v", tt.data, got, tt.want)
			}
		})
	}
}

func TestParse_MatchesParseKey(t *testing.T) {
	t.Parallel()

	if got := Parse([]byte("\x1b[B")); got.Type != KeyDown {
		t.Errorf("Parse() = %+v, want KeyDown", got)
	}
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  Key
		want string
	}{
		{name: "rune a", key: Key{Type: KeyRune, Rune: 'a'}, want: "a"},
		{name: "enter", key: Key{Type: KeyEnter}, want: "Enter"},
		{name: "ctrl+c", key: CtrlC, want: "Ctrl+C"},
		{name: "ctrl+space", key: Key{Type: KeyRune, Rune: ' ', Ctrl: true}, want: "Ctrl+Space"},
		{name: "arrow up", key: Key{Type: KeyUp}, want: "Up"},
		{name: "ctrl+shift+up", key: Key{Type: KeyUp, Ctrl: true, Shift: true}, want: "Ctrl+Shift+Up"},
		{name: "backtab", key: Key{Type: KeyBackTab, Shift: true}, want: "BackTab"},
		{name: "f7", key: Key{Type: KeyFunction, F: 7}, want: "F7"},
		{name: "unknown", key: Key{Type: KeyUnknown}, want: "Unknown"},
		{name: "out of range", key: Key{Type: KeyType(999)}, want: "Unknown"},
		{name: "alt rune", key: Key{Type: KeyRune, Rune: 'x', Alt: true}, want: "Alt+x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.key.String()
			if got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}
