// ABOUTME: Table-driven tests for the input segmentation grammar.
// ABOUTME: Covers CSI, SS3, strings, Alt+rune, paste, graphemes, malformed and incomplete input.

package input

import "testing"

func TestNextEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		data           string
		wantN          int
		wantIncomplete bool
	}{
		{name: "empty", data: "", wantN: 0},
		{name: "ascii", data: "ab", wantN: 1},
		{name: "control byte", data: "\x03x", wantN: 1},
		{name: "carriage return", data: "\r\n", wantN: 1},
		{name: "del", data: "\x7f", wantN: 1},
		{name: "two byte rune", data: "\u00e9a", wantN: 2},
		{name: "emoji", data: "\U0001F600x", wantN: 4},
		{name: "combining mark", data: "e\u0301x", wantN: 3},
		{name: "zwj family", data: "\U0001F468\u200d\U0001F469x", wantN: 11},
		{name: "flag", data: "\U0001F1E9\U0001F1EAx", wantN: 8},
		{name: "flag half at end", data: "\U0001F1E9", wantIncomplete: true},
		{name: "flag half then letter", data: "\U0001F1E9x", wantN: 4},
		{name: "trailing zwj", data: "\U0001F468\u200d", wantIncomplete: true},
		{name: "cluster at end", data: "e\u0301", wantN: 3},
		{name: "invalid byte", data: "\xffa", wantN: 1},
		{name: "split rune", data: "\xc3", wantIncomplete: true},
		{name: "rune then split combining", data: "e\xcc", wantIncomplete: true},

		{name: "lone esc", data: "\x1b", wantIncomplete: true},
		{name: "esc esc", data: "\x1b\x1b[A", wantN: 1},
		{name: "alt+a", data: "\x1bab", wantN: 2},
		{name: "alt+rune", data: "\x1b\u00e9", wantN: 3},
		{name: "alt split rune", data: "\x1b\xc3", wantIncomplete: true},
		{name: "esc invalid", data: "\x1b\xff", wantN: 1},

		{name: "csi arrow", data: "\x1b[Cc", wantN: 3},
		{name: "csi params", data: "\x1b[1;5Ax", wantN: 6},
		{name: "csi tilde", data: "\x1b[3~", wantN: 4},
		{name: "csi kitty u", data: "\x1b[97;5u", wantN: 8},
		{name: "csi sgr mouse", data: "\x1b[<0;10;20M", wantN: 11},
		{name: "csi incomplete", data: "\x1b[1;", wantIncomplete: true},
		{name: "csi intro only", data: "\x1b[", wantIncomplete: true},
		{name: "csi malformed", data: "\x1b[1\x1b[A", wantN: 3},
		{name: "x10 mouse", data: "\x1b[M !!z", wantN: 6},
		{name: "x10 mouse short", data: "\x1b[M !", wantIncomplete: true},

		{name: "ss3", data: "\x1bOPx", wantN: 3},
		{name: "ss3 short", data: "\x1bO", wantIncomplete: true},
		{name: "ss3 malformed", data: "\x1bO\x03", wantN: 2},

		{name: "osc bel", data: "\x1b]11;rgb:0/0/0\x07x", wantN: 15},
		{name: "osc st", data: "\x1b]0;t\x1b\\x", wantN: 7},
		{name: "osc open", data: "\x1b]11;rgb", wantIncomplete: true},
		{name: "osc esc at end", data: "\x1b]0;t\x1b", wantIncomplete: true},
		{name: "osc interrupted", data: "\x1b]0;t\x1b[A", wantN: 5},
		{name: "dcs", data: "\x1bP1$r0m\x1b\\", wantN: 9},

		{name: "paste", data: "\x1b[200~hi\x1b[A\x1b[201~z", wantN: 17},
		{name: "paste open", data: "\x1b[200~hello", wantIncomplete: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n, incomplete := nextEvent([]byte(tt.data))
			if incomplete != tt.wantIncomplete {
				t.Fatalf("nextEvent(%q) incomplete = %v, want %v", tt.data, incomplete, tt.wantIncomplete)
			}
			if n != tt.wantN {
				t.Errorf("nextEvent(%q) n = %d, want %d", tt.data, n, tt.wantN)
			}
		})
	}
}

func TestValidPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		data string
		want string
	}{
		{"abc", "abc"},
		{"ab\xc3", "ab"},
		{"a\xffb", "a"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := string(validPrefix([]byte(tt.data))); got != tt.want {
			t.Errorf("validPrefix(%q) = %q, want %q", tt.data, got, tt.want)
		}
	}
}
