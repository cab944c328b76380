// ABOUTME: ProcessTerminal implements Terminal over real files using golang.org/x/term.
// ABOUTME: Captures the original mode on entry and restores it exactly once; reports ErrUnavailable for non-TTY input.

package terminal

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// ProcessTerminal is a real terminal backed by an input and an output file.
type ProcessTerminal struct {
	in  *os.File
	out *os.File

	mu         sync.Mutex
	oldState   *term.State
	resizeFn   func(width, height int)
	stopResize func()
}

// NewProcessTerminal returns a ProcessTerminal over os.Stdin and os.Stdout.
func NewProcessTerminal() *ProcessTerminal {
	return NewProcessTerminalFiles(os.Stdin, os.Stdout)
}

// NewProcessTerminalFiles returns a ProcessTerminal over the given files.
func NewProcessTerminalFiles(in, out *os.File) *ProcessTerminal {
	return &ProcessTerminal{in: in, out: out}
}

// Interactive reports whether the input side is a terminal.
func (t *ProcessTerminal) Interactive() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// EnterRawMode switches the input to raw mode, saving the previous state.
// Calling it while already raw is a no-op.
func (t *ProcessTerminal) EnterRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState != nil {
		return nil
	}
	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("entering raw mode on %s: %w", t.in.Name(), ErrUnavailable)
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	t.oldState = state
	return nil
}

// ExitRawMode restores the terminal to the state captured by EnterRawMode.
// A second call is a no-op.
func (t *ProcessTerminal) ExitRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState == nil {
		return nil
	}
	if err := term.Restore(int(t.in.Fd()), t.oldState); err != nil {
		return fmt.Errorf("exiting raw mode: %w", err)
	}
	t.oldState = nil
	return nil
}

// Mode reports the current input mode.
func (t *ProcessTerminal) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.oldState != nil {
		return ModeRaw
	}
	return ModeCooked
}

// Size returns the current terminal dimensions, asking the output first and
// falling back to the input when the output is redirected.
func (t *ProcessTerminal) Size() (width, height int, err error) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err == nil {
		return w, h, nil
	}
	w, h, err = term.GetSize(int(t.in.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return w, h, nil
}

// Write sends bytes to the output file.
func (t *ProcessTerminal) Write(p []byte) (int, error) {
	n, err := t.out.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to %s: %w", t.out.Name(), err)
	}
	return n, nil
}

// OnResize registers a callback invoked when the terminal is resized.
// Platform-specific signal handling is set up by startResizeListener on
// the first registration; later calls only replace the callback.
func (t *ProcessTerminal) OnResize(fn func(width, height int)) {
	t.mu.Lock()
	t.resizeFn = fn
	started := t.stopResize != nil
	t.mu.Unlock()

	if started {
		return
	}
	stop := t.startResizeListener()
	t.mu.Lock()
	t.stopResize = stop
	t.mu.Unlock()
}

// Close stops the resize listener. It does not restore the terminal mode.
func (t *ProcessTerminal) Close() {
	t.mu.Lock()
	stop := t.stopResize
	t.stopResize = nil
	t.resizeFn = nil
	t.mu.Unlock()

	if stop != nil {
		stop()
	}
}
