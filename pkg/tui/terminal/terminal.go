// ABOUTME: Defines the Terminal interface and the Mode it owns: cooked or raw input.
// ABOUTME: One Terminal handle is the sole owner of the process-wide terminal mode.

package terminal

import "errors"

// ErrUnavailable is returned by EnterRawMode when the input is not an
// interactive terminal (e.g. redirected from a file or a pipe).
var ErrUnavailable = errors.New("terminal unavailable")

// Mode is the input mode of the terminal.
type Mode int

const (
	ModeCooked Mode = iota // Line-buffered, echoing; the state we found
	ModeRaw                // Unbuffered, no echo, no signal keys
)

// String returns the mode display name.
func (m Mode) String() string {
	switch m {
	case ModeCooked:
		return "cooked"
	case ModeRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Size is a terminal size in cells.
type Size struct {
	Width  int
	Height int
}

// Terminal abstracts low-level terminal operations: raw mode,
// size queries, output writing, and resize notifications.
//
// ExitRawMode must be idempotent: calling it when the terminal is not in
// raw mode is a no-op that returns nil.
type Terminal interface {
	EnterRawMode() error
	ExitRawMode() error
	Mode() Mode
	Size() (width, height int, err error)
	Write(p []byte) (n int, err error)
	OnResize(fn func(width, height int))
}
