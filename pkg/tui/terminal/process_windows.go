// ABOUTME: Windows stub for ProcessTerminal resize handling.
// ABOUTME: Windows does not deliver SIGWINCH; resize events are not reported.

//go:build windows

package terminal

// startResizeListener is a no-op on Windows.
// Console resize detection needs ReadConsoleInput, which would compete
// with the input reader for console events.
func (t *ProcessTerminal) startResizeListener() func() {
	return func() {}
}
