// ABOUTME: Bridge owns the terminal for one run of an App: raw mode, input, output, timer, resize, signals.
// ABOUTME: It drives the lifecycle, maps the first exit request to a process exit code, and always restores the terminal.

package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/muesli/cancelreader"
	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/termport/internal/eventbus"
	"github.com/mauromedda/termport/internal/log"
	"github.com/mauromedda/termport/pkg/tui/frame"
	"github.com/mauromedda/termport/pkg/tui/input"
	"github.com/mauromedda/termport/pkg/tui/key"
	"github.com/mauromedda/termport/pkg/tui/output"
	"github.com/mauromedda/termport/pkg/tui/terminal"
)

const (
	// DefaultDrainTimeout bounds how long pending output and activities
	// are waited for once an exit has been requested.
	DefaultDrainTimeout = 500 * time.Millisecond

	inputBacklog = 64
)

// fallbackSize is reported by Ports.Size until the terminal answers.
var fallbackSize = terminal.Size{Width: 80, Height: 24}

// exitRequest is the single decision that ends a run.
type exitRequest struct {
	code   int
	reason string
	err    error
}

// Bridge connects one App to a terminal. A Bridge runs once.
type Bridge struct {
	term   terminal.Terminal
	stdin  io.Reader
	stdout io.Writer

	frameInterval time.Duration
	drainTimeout  time.Duration
	escTimeout    time.Duration
	syncFrames    bool
	signals       <-chan os.Signal
	lifecycle     *eventbus.Bus[State]

	state   atomic.Int32
	used    atomic.Bool
	faulted atomic.Bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithFrameInterval sets the timer port cadence. Zero disables the timer.
func WithFrameInterval(d time.Duration) Option {
	return func(b *Bridge) {
		if d < 0 {
			d = 0
		}
		b.frameInterval = d
	}
}

// WithDrainTimeout sets the grace period for flushing output on exit.
func WithDrainTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.drainTimeout = d
		}
	}
}

// WithEscTimeout sets how long an incomplete escape sequence may wait for
// its remaining bytes.
func WithEscTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.escTimeout = d
		}
	}
}

// WithSyncFrames wraps every output payload in synchronized-update markers.
func WithSyncFrames(on bool) Option {
	return func(b *Bridge) {
		b.syncFrames = on
	}
}

// WithSignalChannel replaces OS signal notification with ch. Any value
// received on ch ends the run like a termination signal.
func WithSignalChannel(ch <-chan os.Signal) Option {
	return func(b *Bridge) {
		b.signals = ch
	}
}

// WithLifecycle publishes state transitions on bus.
func WithLifecycle(bus *eventbus.Bus[State]) Option {
	return func(b *Bridge) {
		if bus != nil {
			b.lifecycle = bus
		}
	}
}

// New creates a Bridge reading stdin and writing stdout, with term
// controlling the input mode.
func New(term terminal.Terminal, stdin io.Reader, stdout io.Writer, opts ...Option) *Bridge {
	b := &Bridge{
		term:          term,
		stdin:         stdin,
		stdout:        stdout,
		frameInterval: frame.DefaultInterval,
		drainTimeout:  DefaultDrainTimeout,
		escTimeout:    input.DefaultEscTimeout,
		lifecycle:     eventbus.New[State](),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	return State(b.state.Load())
}

// Lifecycle returns the bus on which state transitions are published.
func (b *Bridge) Lifecycle() *eventbus.Bus[State] {
	return b.lifecycle
}

func (b *Bridge) setState(s State) {
	b.state.Store(int32(s))
	log.Debug("bridge: %s", s)
	b.lifecycle.Publish(s)
}

// Run enters raw mode, starts every activity, runs app, and blocks until
// the first exit request. It then drains output within the drain timeout,
// restores the terminal, and returns the exit code. The returned error is
// non-nil only when the run ended because of a fault or cancellation of ctx.
func (b *Bridge) Run(ctx context.Context, app App) (int, error) {
	if !b.used.CompareAndSwap(false, true) {
		return 1, ErrAlreadyRun
	}
	b.setState(StateInitializing)
	defer b.setState(StateTerminated)

	passthrough := false
	if err := b.term.EnterRawMode(); err != nil {
		if !errors.Is(err, terminal.ErrUnavailable) {
			return 1, fmt.Errorf("%w: %w", ErrUnrecoverable, err)
		}
		log.Warn("raw mode unavailable, input stays line buffered: %v", err)
		passthrough = true
	}
	defer b.restore()

	exitCh := make(chan exitRequest, 1)
	var exitOnce sync.Once
	requestExit := func(req exitRequest) {
		exitOnce.Do(func() {
			exitCh <- req
		})
	}

	// A panic in any activity restores the terminal at once and ends the run.
	fault := func(err error) {
		b.faulted.Store(true)
		requestExit(exitRequest{code: 1, reason: "panic", err: fmt.Errorf("%w: %w", ErrUnrecoverable, err)})
	}
	recovered := func(err error) {
		_ = b.term.ExitRawMode()
		fault(err)
	}

	writer := output.NewWriter(b.stdout,
		output.WithSyncFrames(b.syncFrames),
		output.WithOnError(func(err error) {
			log.Error("terminal output failed, further output is dropped: %v", err)
		}),
		output.WithOnPanic(recovered),
	)
	writer.Start()

	ports := &Ports{
		input:    make(chan input.Event, inputBacklog),
		timer:    make(chan frame.Tick),
		resize:   make(chan terminal.Size, 1),
		out:      writer,
		term:     b.term,
		exit:     requestExit,
		lastSize: fallbackSize,
	}
	ports.Size()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	g, gctx := errgroup.WithContext(runCtx)

	stdin, cancelStdin := interruptible(b.stdin)
	reader := input.NewReader(stdin,
		input.WithEscTimeout(b.escTimeout),
		input.WithPassthrough(passthrough),
	)
	appDone := make(chan struct{})
	closeInput := sync.OnceFunc(func() { close(ports.input) })
	g.Go(func() error {
		defer terminal.RecoverRawMode(b.term, fault)
		defer closeInput()

		err := reader.Start(gctx, func(ev input.Event) {
			if log.Enabled(log.LevelDebug) {
				log.Debug("input %s key=%s", ev, key.Parse(ev.Data))
			}
			select {
			case ports.input <- ev:
			case <-gctx.Done():
			}
		})
		closeInput()
		if errors.Is(err, input.ErrStreamClosed) {
			if !errors.Is(err, io.EOF) {
				log.Warn("input stream ended: %v", err)
			}
			// Queued events may still carry the app's own exit request.
			b.awaitApp(gctx, appDone)
			requestExit(exitRequest{code: 0, reason: "input closed"})
		}
		return nil
	})

	var sched *frame.Scheduler
	if b.frameInterval > 0 {
		sched = frame.NewScheduler(b.frameInterval, frame.WithPanicHandler(recovered))
		sched.Start(gctx, func(t frame.Tick) {
			select {
			case ports.timer <- t:
			case <-gctx.Done():
			}
		})
	}

	b.term.OnResize(func(w, h int) {
		ports.publishResize(terminal.Size{Width: w, Height: h})
	})

	sigCh := b.signals
	if sigCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, terminationSignals...)
		defer signal.Stop(ch)
		sigCh = ch
	}
	g.Go(func() error {
		defer terminal.RecoverRawMode(b.term, fault)
		select {
		case sig := <-sigCh:
			requestExit(exitRequest{code: signalExitCode(sig), reason: "signal " + sig.String()})
		case <-gctx.Done():
		}
		return nil
	})

	// The app starts last so every port is live when it first looks.
	g.Go(func() error {
		defer close(appDone)
		if err := b.runApp(gctx, app, ports); err != nil {
			requestExit(exitRequest{code: 1, reason: "app failed", err: err})
			return nil
		}
		requestExit(exitRequest{code: 0, reason: "app returned"})
		return nil
	})

	b.setState(StateRunning)

	var req exitRequest
	select {
	case req = <-exitCh:
	case <-ctx.Done():
		requestExit(exitRequest{code: 1, reason: "cancelled", err: ctx.Err()})
		req = <-exitCh
	}

	b.setState(StateDraining)
	log.Debug("bridge: exit %d (%s)", req.code, req.reason)
	if req.err != nil {
		log.Error("%s: %v", req.reason, req.err)
	}
	b.drain(g, writer, sched, cancelRun, cancelStdin)
	if b.faulted.Load() {
		// Sent only now so it cannot land inside a queued payload.
		_, _ = b.term.Write([]byte(terminal.ShowCursor))
	}

	return req.code, req.err
}

// drain stops every activity and flushes output, all within the drain timeout.
func (b *Bridge) drain(g *errgroup.Group, writer *output.Writer, sched *frame.Scheduler, cancelRun, cancelStdin func()) {
	b.term.OnResize(nil)
	cancelRun()
	if sched != nil {
		sched.Stop()
	}
	cancelStdin()

	drainCtx, cancel := context.WithTimeout(context.Background(), b.drainTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-drainCtx.Done():
		log.Warn("activities still running after %v; abandoning them", b.drainTimeout)
	}

	if err := writer.Close(drainCtx); err != nil {
		log.Warn("output not fully drained: %v (%d payloads abandoned)", err, writer.Pending())
	}
}

// awaitApp gives the app up to the drain timeout to consume the closed input
// port and return.
func (b *Bridge) awaitApp(ctx context.Context, appDone <-chan struct{}) {
	t := time.NewTimer(b.drainTimeout)
	defer t.Stop()
	select {
	case <-appDone:
	case <-ctx.Done():
	case <-t.C:
		log.Debug("bridge: app still running %v after end of input", b.drainTimeout)
	}
}

func (b *Bridge) runApp(ctx context.Context, app App, ports *Ports) (err error) {
	defer terminal.RecoverRawMode(b.term, func(perr error) {
		b.faulted.Store(true)
		err = fmt.Errorf("%w: app core: %w", ErrUnrecoverable, perr)
	})
	if err := app.Run(ctx, ports); err != nil {
		return fmt.Errorf("%w: app core: %w", ErrUnrecoverable, err)
	}
	return nil
}

func (b *Bridge) restore() {
	if err := b.term.ExitRawMode(); err != nil {
		log.Error("restoring terminal: %v", err)
	}
}

// interruptible wraps r so a blocked Read can be abandoned on shutdown.
func interruptible(r io.Reader) (io.Reader, func()) {
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		log.Debug("input is not cancelable: %v", err)
		return r, func() {}
	}
	return cr, func() {
		cr.Cancel()
	}
}

// signalExitCode follows the shell convention of 128 plus the signal number.
func signalExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
