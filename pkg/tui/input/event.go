// ABOUTME: Event is one decoded unit of terminal input with its arrival sequence number.
// ABOUTME: Concatenating Data over all events of a stream reproduces the bytes read.

package input

import (
	"errors"
	"strconv"
)

// ErrStreamClosed is returned by Reader.Start when the underlying reader
// reaches end of stream or fails. It wraps the underlying cause.
var ErrStreamClosed = errors.New("input stream closed")

// Event is one decoded unit of input: a keypress, a control sequence, a
// bracketed paste, or a raw chunk.
type Event struct {
	Seq  uint64 // 1-based arrival order
	Data []byte
}

// String returns the quoted event bytes for debug display.
func (e Event) String() string {
	return "#" + strconv.FormatUint(e.Seq, 10) + " " + strconv.Quote(string(e.Data))
}
