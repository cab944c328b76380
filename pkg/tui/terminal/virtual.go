// ABOUTME: VirtualTerminal implements Terminal for testing without a real TTY.
// ABOUTME: Captures output in a buffer, tracks raw-mode transitions, and can pose as non-interactive.

package terminal

import (
	"bytes"
	"fmt"
	"sync"
)

// VirtualTerminal is a fake Terminal for unit tests.
// It records written output and tracks raw-mode transitions.
type VirtualTerminal struct {
	mu           sync.Mutex
	buf          bytes.Buffer
	width        int
	height       int
	rawMode      bool
	interactive  bool
	resizeFn     func(width, height int)
	enterCount   int
	exitCount    int
	restoreCount int
}

// NewVirtualTerminal returns an interactive VirtualTerminal with the given dimensions.
func NewVirtualTerminal(width, height int) *VirtualTerminal {
	return &VirtualTerminal{
		width:       width,
		height:      height,
		interactive: true,
	}
}

// EnterRawMode records a raw-mode entry. It fails with ErrUnavailable when
// the terminal has been marked non-interactive.
func (v *VirtualTerminal) EnterRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.enterCount++
	if !v.interactive {
		return fmt.Errorf("entering raw mode on virtual terminal: %w", ErrUnavailable)
	}
	v.rawMode = true
	return nil
}

// ExitRawMode records a raw-mode exit. Only the first exit after an entry
// counts as a restore.
func (v *VirtualTerminal) ExitRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.exitCount++
	if v.rawMode {
		v.rawMode = false
		v.restoreCount++
	}
	return nil
}

// Mode reports the simulated input mode.
func (v *VirtualTerminal) Mode() Mode {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.rawMode {
		return ModeRaw
	}
	return ModeCooked
}

// Size returns the configured terminal dimensions.
func (v *VirtualTerminal) Size() (width, height int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.width, v.height, nil
}

// Write appends data to the internal buffer.
func (v *VirtualTerminal) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n, err := v.buf.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to virtual buffer: %w", err)
	}
	return n, nil
}

// OnResize stores the resize callback.
func (v *VirtualTerminal) OnResize(fn func(width, height int)) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.resizeFn = fn
}

// --- Test helpers (not part of Terminal interface) ---

// SetInteractive marks the terminal as a TTY (true) or as redirected input.
func (v *VirtualTerminal) SetInteractive(interactive bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.interactive = interactive
}

// Output returns everything written so far.
func (v *VirtualTerminal) Output() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.buf.String()
}

// Reset clears the output buffer.
func (v *VirtualTerminal) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.buf.Reset()
}

// IsRawMode reports whether raw mode is currently active.
func (v *VirtualTerminal) IsRawMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.rawMode
}

// EnterCount returns how many times EnterRawMode was called.
func (v *VirtualTerminal) EnterCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.enterCount
}

// ExitCount returns how many times ExitRawMode was called.
func (v *VirtualTerminal) ExitCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.exitCount
}

// RestoreCount returns how many ExitRawMode calls actually left raw mode.
func (v *VirtualTerminal) RestoreCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.restoreCount
}

// SetSize updates the terminal dimensions and, if a resize callback
// is registered, invokes it with the new size.
func (v *VirtualTerminal) SetSize(width, height int) {
	v.mu.Lock()
	v.width = width
	v.height = height
	fn := v.resizeFn
	v.mu.Unlock()

	if fn != nil {
		fn(width, height)
	}
}
