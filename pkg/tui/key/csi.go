// ABOUTME: CSI and SS3 sequence tables plus xterm/kitty modifier decoding.
// ABOUTME: Handles CSI letter keys, CSI number~ keys, CSI codepoint u, paste, mouse, and focus reports.

package key

import (
	"strconv"
	"strings"
)

// Modifier bitmask values (encoded as modifiers-1 in the wire format).
const (
	modShift = 1 << iota
	modAlt
	modCtrl
)

// ss3Keys maps the byte after ESC O to its key (application cursor mode and F1-F4).
var ss3Keys = map[string]Key{
	"A": {Type: KeyUp},
	"B": {Type: KeyDown},
	"C": {Type: KeyRight},
	"D": {Type: KeyLeft},
	"H": {Type: KeyHome},
	"F": {Type: KeyEnd},
	"M": {Type: KeyEnter},
	"P": {Type: KeyFunction, F: 1},
	"Q": {Type: KeyFunction, F: 2},
	"R": {Type: KeyFunction, F: 3},
	"S": {Type: KeyFunction, F: 4},
}

// letterKeys maps CSI final letters to their keys.
var letterKeys = map[byte]Key{
	'A': {Type: KeyUp},
	'B': {Type: KeyDown},
	'C': {Type: KeyRight},
	'D': {Type: KeyLeft},
	'H': {Type: KeyHome},
	'F': {Type: KeyEnd},
	'Z': {Type: KeyBackTab, Shift: true},
	'P': {Type: KeyFunction, F: 1},
	'Q': {Type: KeyFunction, F: 2},
	'S': {Type: KeyFunction, F: 4},
}

// tildeKeys maps CSI number~ codes to their keys.
var tildeKeys = map[int]Key{
	1:  {Type: KeyHome},
	2:  {Type: KeyInsert},
	3:  {Type: KeyDelete},
	4:  {Type: KeyEnd},
	5:  {Type: KeyPageUp},
	6:  {Type: KeyPageDown},
	7:  {Type: KeyHome},
	8:  {Type: KeyEnd},
	11: {Type: KeyFunction, F: 1},
	12: {Type: KeyFunction, F: 2},
	13: {Type: KeyFunction, F: 3},
	14: {Type: KeyFunction, F: 4},
	15: {Type: KeyFunction, F: 5},
	17: {Type: KeyFunction, F: 6},
	18: {Type: KeyFunction, F: 7},
	19: {Type: KeyFunction, F: 8},
	20: {Type: KeyFunction, F: 9},
	21: {Type: KeyFunction, F: 10},
	23: {Type: KeyFunction, F: 11},
	24: {Type: KeyFunction, F: 12},
}

// codepointKeys maps CSI u codepoints for non-printing keys.
var codepointKeys = map[int]Key{
	9:   {Type: KeyTab},
	13:  {Type: KeyEnter},
	27:  {Type: KeyEscape},
	127: {Type: KeyBackspace},
}

// parseCSI classifies ESC [ ... sequences.
func parseCSI(data string) Key {
	if strings.HasPrefix(data, "\x1b[200~") {
		return Key{Type: KeyPaste}
	}
	if len(data) < 3 {
		return Key{Type: KeyUnknown}
	}

	if len(data) == 6 && data[2] == 'M' {
		return Key{Type: KeyMouse}
	}

	body := data[2 : len(data)-1]
	final := data[len(data)-1]

	switch {
	case strings.HasPrefix(body, "<") && (final == 'M' || final == 'm'):
		return Key{Type: KeyMouse}
	case body == "" && (final == 'I' || final == 'O'):
		return Key{Type: KeyFocus}
	case strings.HasPrefix(body, "?") || final == 'R' && strings.Contains(body, ";") && !strings.HasPrefix(body, "1;"):
		return Key{Type: KeyReport}
	}

	numStr, modStr, _ := strings.Cut(body, ";")
	mods, release, ok := parseModifiers(modStr)
	if !ok || release {
		return Key{Type: KeyUnknown}
	}

	var k Key
	switch final {
	case '~':
		num, err := strconv.Atoi(numStr)
		if err != nil {
			return Key{Type: KeyUnknown}
		}
		if k, ok = tildeKeys[num]; !ok {
			return Key{Type: KeyUnknown}
		}
	case 'u':
		cp, err := parseCodepoint(numStr)
		if err != nil {
			return Key{Type: KeyUnknown}
		}
		if k, ok = codepointKeys[cp]; !ok {
			k = Key{Type: KeyRune, Rune: rune(cp)}
		}
	default:
		if numStr != "" && numStr != "1" {
			return Key{Type: KeyUnknown}
		}
		if k, ok = letterKeys[final]; !ok {
			return Key{Type: KeyUnknown}
		}
	}

	applyModifiers(&k, mods)
	return k
}

// parseCodepoint extracts the primary codepoint from <codepoint>[:<shifted>[:<base>]].
func parseCodepoint(s string) (int, error) {
	primary, _, _ := strings.Cut(s, ":")
	return strconv.Atoi(primary)
}

// parseModifiers parses <modifiers>[:<event_type>]. Event type 3 is a
// key release.
func parseModifiers(s string) (mods int, release bool, ok bool) {
	if s == "" {
		return 0, false, true
	}
	modStr, eventStr, _ := strings.Cut(s, ":")
	modVal, err := strconv.Atoi(modStr)
	if err != nil || modVal < 1 {
		return 0, false, false
	}
	if eventStr != "" {
		ev, err := strconv.Atoi(eventStr)
		if err != nil {
			return 0, false, false
		}
		release = ev == 3
	}
	return modVal - 1, release, true
}

// applyModifiers sets modifier flags on k from a decoded bitmask.
func applyModifiers(k *Key, mods int) {
	k.Shift = k.Shift || mods&modShift != 0
	k.Alt = mods&modAlt != 0
	k.Ctrl = mods&modCtrl != 0
}
