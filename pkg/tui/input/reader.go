// ABOUTME: Reader reads raw bytes from an io.Reader and dispatches segmented input events in order.
// ABOUTME: Waits up to EscTimeout for split sequences, flushes leftovers at end of stream, and never drops bytes.

package input

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mauromedda/termport/pkg/tui/internal/pool"
)

const (
	// DefaultEscTimeout bounds how long an incomplete sequence waits for
	// the rest of its bytes before it is emitted as is.
	DefaultEscTimeout = 50 * time.Millisecond

	defaultReadBufSize = 256

	// maxPending caps an unterminated sequence (e.g. a paste with no end
	// marker) before it is emitted as a raw chunk.
	maxPending = 1 << 20
)

// Reader reads from an io.Reader and dispatches segmented events via onEvent.
type Reader struct {
	reader      io.Reader
	escTimeout  time.Duration
	readBufSize int
	passthrough bool
	seq         uint64
}

// Option configures a Reader.
type Option func(*Reader)

// WithEscTimeout overrides DefaultEscTimeout. Non-positive values are ignored.
func WithEscTimeout(d time.Duration) Option {
	return func(r *Reader) {
		if d > 0 {
			r.escTimeout = d
		}
	}
}

// WithReadBufferSize sets the size of a single read. Non-positive values are ignored.
func WithReadBufferSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.readBufSize = n
		}
	}
}

// WithPassthrough disables segmentation: every read chunk is one event.
// Used when the input is not a terminal and arrives line-buffered.
func WithPassthrough(on bool) Option {
	return func(r *Reader) {
		r.passthrough = on
	}
}

// NewReader creates a Reader over rd.
func NewReader(rd io.Reader, opts ...Option) *Reader {
	r := &Reader{
		reader:      rd,
		escTimeout:  DefaultEscTimeout,
		readBufSize: defaultReadBufSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start reads until ctx is cancelled or the reader returns an error. It
// blocks until completion; call it in a goroutine if non-blocking behavior
// is needed. onEvent is called from the calling goroutine only, once per
// event, in byte order.
//
// On end of stream or a read error, complete events are dispatched, any
// incomplete trailing bytes are dispatched as one final event, and an
// error wrapping ErrStreamClosed is returned. On cancellation buffered
// bytes are discarded and ctx.Err() is returned.
func (r *Reader) Start(ctx context.Context, onEvent func(Event)) error {
	readCh := make(chan readResult)
	done := make(chan struct{})

	go r.readLoop(readCh, done)
	defer close(done)

	buf := pool.GetBytesBuffer()
	defer pool.PutBytesBuffer(buf)

	var timer *time.Timer
	var timerC <-chan time.Time
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timerC = nil
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case result, ok := <-readCh:
			if !ok {
				r.flush(buf, onEvent)
				return fmt.Errorf("%w: %w", ErrStreamClosed, io.EOF)
			}
			if result.err != nil {
				r.flush(buf, onEvent)
				return fmt.Errorf("%w: %w", ErrStreamClosed, result.err)
			}
			if r.passthrough {
				r.emit(result.data, onEvent)
				continue
			}

			buf.Write(result.data)
			if r.dispatch(buf, onEvent) {
				// Restart the wait on every arrival that leaves a sequence open.
				if timer == nil {
					timer = time.NewTimer(r.escTimeout)
				} else {
					timer.Reset(r.escTimeout)
				}
				timerC = timer.C
			} else {
				stopTimer()
			}

		case <-timerC:
			timerC = nil
			// Timeout: the open sequence is all that is left; emit it as is.
			r.emitPending(buf, onEvent)
		}
	}
}

// readResult holds the outcome of a single Read call.
type readResult struct {
	data []byte
	err  error
}

// readLoop continuously reads from the reader and sends data on ch.
// It stops when done is closed, preventing goroutine leaks on context cancellation.
func (r *Reader) readLoop(ch chan<- readResult, done <-chan struct{}) {
	defer close(ch)
	tmp := make([]byte, r.readBufSize)
	for {
		n, err := r.reader.Read(tmp)
		if n > 0 {
			data := make([]byte, n)
			copy(data, tmp[:n])
			select {
			case ch <- readResult{data: data}:
			case <-done:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				select {
				case ch <- readResult{err: err}:
				case <-done:
				}
			}
			return
		}
	}
}

// dispatch emits every complete event at the front of buf. It reports
// whether an incomplete sequence remains buffered.
func (r *Reader) dispatch(buf *bytes.Buffer, onEvent func(Event)) bool {
	for buf.Len() > 0 {
		n, incomplete := nextEvent(buf.Bytes())
		if incomplete {
			if buf.Len() >= maxPending {
				r.emit(buf.Next(buf.Len()), onEvent)
				return false
			}
			return true
		}
		r.emit(buf.Next(n), onEvent)
	}
	return false
}

// emitPending emits everything still buffered as a single event.
func (r *Reader) emitPending(buf *bytes.Buffer, onEvent func(Event)) {
	if buf.Len() == 0 {
		return
	}
	r.emit(buf.Next(buf.Len()), onEvent)
}

// flush dispatches complete events and then any incomplete trailing
// sequence as one best-effort event.
func (r *Reader) flush(buf *bytes.Buffer, onEvent func(Event)) {
	r.dispatch(buf, onEvent)
	r.emitPending(buf, onEvent)
}

// emit copies data into a new Event and hands it to onEvent.
func (r *Reader) emit(data []byte, onEvent func(Event)) {
	r.seq++
	ev := Event{Seq: r.seq, Data: make([]byte, len(data))}
	copy(ev.Data, data)
	onEvent(ev)
}
