// ABOUTME: Termination signals watched by the bridge on unix.
// ABOUTME: Interrupt, terminate, hangup, and quit end a run with 128 plus the signal number.

//go:build unix

package bridge

import (
	"os"
	"syscall"
)

var terminationSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}
