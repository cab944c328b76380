// ABOUTME: Byte-stream segmentation grammar: CSI, SS3, string sequences, Alt+rune, and grapheme clusters.
// ABOUTME: nextEvent reports the length of the first complete event or that more bytes are needed.

package input

import (
	"bytes"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

const (
	esc             = 0x1b
	bel             = 0x07
	zeroWidthJoiner = '\u200d'
	bracketStart    = "\x1b[200~"
	bracketEnd      = "\x1b[201~"
)

// nextEvent returns the length of the first event at the front of b.
// When the front of b is a sequence that is not yet complete it returns
// (0, true): every byte from the front to the end of b belongs to it.
//
// Grammar, in order of precedence:
//
//	ESC [ P* I* F        CSI; P in 0x30-0x3F, I in 0x20-0x2F, F in 0x40-0x7E
//	ESC [ M b b b        legacy X10 mouse report
//	ESC [200~ ... ESC [201~  bracketed paste, one event
//	ESC O x              SS3
//	ESC ] P _ ^ X ... BEL | ESC \   OSC, DCS, APC, PM, SOS strings
//	ESC ESC              first ESC alone
//	ESC rune             Alt+rune
//	C0 control or DEL    one byte
//	grapheme cluster     one user-perceived character (uniseg)
//
// Malformed input is cut at the first byte that breaks the grammar; the
// rest is segmented again from that byte. Invalid UTF-8 yields one-byte
// events. No byte is ever skipped.
//
// A grapheme cluster at the end of the buffered bytes is complete unless it
// ends in ZWJ or is an unpaired regional indicator; those wait for more
// bytes like an open escape sequence. Any other cluster is emitted at once,
// so a combining mark arriving in a later read becomes its own event.
func nextEvent(b []byte) (n int, incomplete bool) {
	if len(b) == 0 {
		return 0, false
	}
	if b[0] == esc {
		return escapeEvent(b)
	}
	if b[0] < 0x20 || b[0] == 0x7f {
		return 1, false
	}
	return graphemeEvent(b)
}

// escapeEvent segments an ESC-prefixed sequence.
func escapeEvent(b []byte) (int, bool) {
	if len(b) == 1 {
		return 0, true
	}
	switch b[1] {
	case '[':
		return csiEvent(b)
	case 'O':
		if len(b) < 3 {
			return 0, true
		}
		if b[2] >= 0x20 && b[2] <= 0x7e {
			return 3, false
		}
		return 2, false
	case ']', 'P', '_', '^', 'X':
		return stringEvent(b)
	case esc:
		return 1, false
	}

	// Alt+rune
	rest := b[1:]
	if !utf8.FullRune(rest) {
		return 0, true
	}
	r, size := utf8.DecodeRune(rest)
	if r == utf8.RuneError && size <= 1 {
		return 1, false
	}
	return 1 + size, false
}

// csiEvent segments ESC [ ... including X10 mouse and bracketed paste.
func csiEvent(b []byte) (int, bool) {
	i := 2
	for i < len(b) && b[i] >= 0x30 && b[i] <= 0x3f {
		i++
	}
	for i < len(b) && b[i] >= 0x20 && b[i] <= 0x2f {
		i++
	}
	if i == len(b) {
		return 0, true
	}
	final := b[i]
	if final < 0x40 || final > 0x7e {
		// Not a CSI after all; emit what we have and resegment from here.
		return i, false
	}
	n := i + 1

	if final == 'M' && n == 3 {
		if len(b) < 6 {
			return 0, true
		}
		return 6, false
	}

	if bytes.Equal(b[:n], []byte(bracketStart)) {
		end := bytes.Index(b[n:], []byte(bracketEnd))
		if end < 0 {
			return 0, true
		}
		return n + end + len(bracketEnd), false
	}
	return n, false
}

// stringEvent segments OSC/DCS/APC/PM/SOS strings terminated by BEL or ST.
func stringEvent(b []byte) (int, bool) {
	for i := 2; i < len(b); i++ {
		switch b[i] {
		case bel:
			return i + 1, false
		case esc:
			if i+1 == len(b) {
				return 0, true
			}
			if b[i+1] == '\\' {
				return i + 2, false
			}
			// Unterminated string interrupted by a new sequence.
			return i, false
		}
	}
	return 0, true
}

// graphemeEvent segments one grapheme cluster starting at a non-control byte.
func graphemeEvent(b []byte) (int, bool) {
	if !utf8.FullRune(b) {
		return 0, true
	}
	if r, size := utf8.DecodeRune(b); r == utf8.RuneError && size <= 1 {
		return 1, false
	}

	valid := validPrefix(b)
	cluster, _, _, _ := uniseg.FirstGraphemeCluster(valid, -1)
	n := len(cluster)
	if n == 0 {
		return 1, false
	}
	if n == len(valid) && len(valid) < len(b) && !utf8.FullRune(b[n:]) {
		// A split rune right after the cluster may still extend it.
		return 0, true
	}
	if n == len(b) && awaitsContinuation(cluster) {
		return 0, true
	}
	return n, false
}

// awaitsContinuation reports whether cluster cannot stand alone: it ends in
// a zero width joiner or is half of a flag.
func awaitsContinuation(cluster []byte) bool {
	last, _ := utf8.DecodeLastRune(cluster)
	if last == zeroWidthJoiner {
		return true
	}
	r, size := utf8.DecodeRune(cluster)
	return size == len(cluster) && isRegionalIndicator(r)
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}

// validPrefix returns the longest prefix of b made of complete, valid runes.
func validPrefix(b []byte) []byte {
	i := 0
	for i < len(b) {
		if !utf8.FullRune(b[i:]) {
			break
		}
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		i += size
	}
	return b[:i]
}
