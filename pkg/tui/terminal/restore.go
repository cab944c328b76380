// ABOUTME: RestoreOnPanic and RecoverRawMode return the terminal to cooked mode on panic.
// ABOUTME: RestoreOnPanic exits the process; RecoverRawMode reports the fault and lets the owner shut down.

package terminal

import (
	"fmt"
	"os"
	"runtime/debug"
)

// ShowCursor is the DECTCEM sequence that makes the cursor visible again.
const ShowCursor = "\x1b[?25h"

// RestoreOnPanic should be deferred at the top of main (or any
// goroutine that owns the terminal). On panic it restores the cursor,
// exits raw mode via the provided Terminal, prints the panic value
// and stack trace, then exits with code 1.
func RestoreOnPanic(t Terminal) {
	r := recover()
	if r == nil {
		return
	}

	restoreAfterPanic(t)
	fmt.Fprintf(os.Stderr, "\npanic: %v\n\n%s\n", r, debug.Stack())
	os.Exit(1)
}

// RecoverRawMode should be deferred at the top of background goroutines
// that run while the terminal is in raw mode. Unlike RestoreOnPanic it does
// NOT call os.Exit; the fault is handed to report (if non-nil) so the owner
// can drive an orderly shutdown. It writes nothing, so a queued payload is
// never split: the owner shows the cursor once its writer has stopped.
func RecoverRawMode(t Terminal, report func(error)) {
	r := recover()
	if r == nil {
		return
	}

	_ = t.ExitRawMode()
	fmt.Fprintf(os.Stderr, "\ngoroutine panic: %v\n\n%s\n", r, debug.Stack())
	if report != nil {
		report(fmt.Errorf("panic: %v", r))
	}
}

// restoreAfterPanic is best-effort: show the cursor and leave raw mode.
func restoreAfterPanic(t Terminal) {
	_, _ = t.Write([]byte(ShowCursor))
	_ = t.ExitRawMode()
}
