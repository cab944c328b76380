// ABOUTME: Termination signals watched by the bridge on Windows.
// ABOUTME: Only interrupt and terminate are delivered by the Go runtime there.

//go:build windows

package bridge

import (
	"os"
	"syscall"
)

var terminationSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
}
