// ABOUTME: Writer queues output payloads and writes them to a sink in submission order from one goroutine.
// ABOUTME: Unbounded FIFO, whole-payload writes with sink flush, single error report, bounded drain on Close.

package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/mauromedda/termport/pkg/tui/internal/pool"
)

// ErrWriteFailure wraps the first error returned by the sink. After it,
// every payload is dropped.
var ErrWriteFailure = errors.New("output write failed")

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("output writer closed")

// CSI 2026 synchronized output markers.
const (
	syncBegin = "\x1b[?2026h"
	syncEnd   = "\x1b[?2026l"
)

// flusher is implemented by buffered sinks such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// Writer is an ordered, non-blocking output queue in front of an io.Writer.
type Writer struct {
	sink       io.Writer
	syncFrames bool
	onError    func(error)
	onPanic    func(error)

	mu       sync.Mutex
	queue    [][]byte
	inflight bool
	closed   bool
	err      error
	waiters  []chan struct{}
	written  uint64
	dropped  uint64
	running  bool
	wakeCh   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// Option configures a Writer.
type Option func(*Writer)

// WithOnError registers a callback invoked once, from the writer
// goroutine, with the first sink error (wrapped in ErrWriteFailure).
func WithOnError(fn func(error)) Option {
	return func(w *Writer) {
		w.onError = fn
	}
}

// WithOnPanic registers a callback for a panic raised by the sink. The panic
// is recovered, the writer fails as if the sink had returned an error, and
// fn receives that error instead of the WithOnError callback.
func WithOnPanic(fn func(error)) Option {
	return func(w *Writer) {
		w.onPanic = fn
	}
}

// WithSyncFrames wraps every payload in CSI 2026 synchronized-output
// markers so terminals that support it paint each payload atomically.
func WithSyncFrames(on bool) Option {
	return func(w *Writer) {
		w.syncFrames = on
	}
}

// NewWriter creates a Writer over sink. Call Start to begin writing;
// payloads submitted before Start are queued.
func NewWriter(sink io.Writer, opts ...Option) *Writer {
	w := &Writer{
		sink:   sink,
		wakeCh: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the write loop in a goroutine. Calling it more than once is a no-op.
func (w *Writer) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.writeLoop()
	w.wake()
}

// Write copies p and queues it. It never blocks on the sink. After a
// sink failure or Close the payload is dropped and an error is returned.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	if w.err != nil {
		w.dropped++
		err := w.err
		w.mu.Unlock()
		return 0, err
	}
	if w.closed {
		w.dropped++
		w.mu.Unlock()
		return 0, ErrClosed
	}
	payload := make([]byte, len(p))
	copy(payload, p)
	w.queue = append(w.queue, payload)
	w.mu.Unlock()

	w.wake()
	return len(p), nil
}

// WriteString queues s.
func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// wake signals the loop. Multiple calls coalesce into one pass via a
// buffered channel of size 1.
func (w *Writer) wake() {
	select {
	case w.wakeCh <- struct{}{}:
	default: // Already pending; coalesced
	}
}

// Flush blocks until every queued payload has been written (or dropped
// after a failure), or ctx is done.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.idleLocked() {
		w.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	w.waiters = append(w.waiters, ch)
	w.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flushing output (%d pending): %w", w.Pending(), ctx.Err())
	}
}

// Close stops intake, flushes with ctx as the grace period, and stops
// the loop. Payloads still queued when ctx expires are abandoned; a write
// already in progress is not interrupted. Safe to call multiple times.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	flushErr := w.Flush(ctx)

	w.stopOnce.Do(func() {
		close(w.stopCh)
	})

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if !running {
		return flushErr
	}

	select {
	case <-w.doneCh:
		return flushErr
	default:
	}
	select {
	case <-w.doneCh:
	case <-ctx.Done():
		if flushErr == nil {
			flushErr = fmt.Errorf("stopping output: %w", ctx.Err())
		}
	}
	return flushErr
}

// Err returns the sink failure, if any.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Pending returns the number of payloads waiting to be written.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Written returns the number of payloads fully written.
func (w *Writer) Written() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Dropped returns the number of payloads rejected after a failure or Close.
func (w *Writer) Dropped() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

func (w *Writer) writeLoop() {
	defer close(w.doneCh)
	defer w.recoverSink()
	for {
		select {
		case <-w.stopCh:
			return
		case <-w.wakeCh:
		}

		for {
			select {
			case <-w.stopCh:
				return
			default:
			}

			payload, ok := w.pop()
			if !ok {
				break
			}
			w.writePayload(payload)
		}
	}
}

// recoverSink turns a sink panic into a write failure so Flush and Close
// callers are released.
func (w *Writer) recoverSink() {
	r := recover()
	if r == nil {
		return
	}

	w.mu.Lock()
	if w.err == nil {
		w.err = fmt.Errorf("%w: sink panic: %v", ErrWriteFailure, r)
	}
	w.dropped += uint64(len(w.queue))
	if w.inflight {
		w.dropped++
	}
	w.queue = nil
	w.inflight = false
	w.releaseWaitersLocked()
	reported := w.err
	w.mu.Unlock()

	switch {
	case w.onPanic != nil:
		w.onPanic(reported)
	case w.onError != nil:
		w.onError(reported)
	}
}

// pop takes the next payload, or marks the writer idle and releases
// Flush waiters when the queue is empty.
func (w *Writer) pop() ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.queue) == 0 || w.err != nil {
		w.inflight = false
		w.releaseWaitersLocked()
		return nil, false
	}
	payload := w.queue[0]
	w.queue[0] = nil
	w.queue = w.queue[1:]
	w.inflight = true
	return payload, true
}

// writePayload writes one payload completely and flushes the sink.
func (w *Writer) writePayload(payload []byte) {
	data := payload
	if w.syncFrames {
		buf := pool.GetBytesBuffer()
		defer pool.PutBytesBuffer(buf)
		buf.WriteString(syncBegin)
		buf.Write(payload)
		buf.WriteString(syncEnd)
		data = buf.Bytes()
	}

	err := writeFull(w.sink, data)
	if err == nil {
		if f, ok := w.sink.(flusher); ok {
			err = f.Flush()
		}
	}

	w.mu.Lock()
	if err == nil {
		w.written++
		w.mu.Unlock()
		return
	}
	w.err = fmt.Errorf("%w: %w", ErrWriteFailure, err)
	w.dropped += uint64(len(w.queue)) + 1
	w.queue = nil
	reported := w.err
	w.mu.Unlock()

	if w.onError != nil {
		w.onError(reported)
	}
}

// writeFull retries short writes until data is written or the sink fails.
func writeFull(sink io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := sink.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		data = data[n:]
	}
	return nil
}

// idleLocked reports whether nothing is queued or being written.
// Must be called with w.mu held.
func (w *Writer) idleLocked() bool {
	return (len(w.queue) == 0 || w.err != nil) && !w.inflight
}

// releaseWaitersLocked wakes every Flush caller. Must be called with w.mu held.
func (w *Writer) releaseWaitersLocked() {
	for _, ch := range w.waiters {
		close(ch)
	}
	w.waiters = nil
}
