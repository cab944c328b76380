// ABOUTME: Lifecycle states of a Bridge run and the errors that end one.
// ABOUTME: States only move forward: initializing, running, draining, terminated.

package bridge

import "errors"

// ErrUnrecoverable marks a fault in the app core or the bridge itself.
// A run that ends with it exits with code 1.
var ErrUnrecoverable = errors.New("unrecoverable fault")

// ErrAlreadyRun is returned when Run is called on a Bridge a second time.
var ErrAlreadyRun = errors.New("bridge already run")

// State is a Bridge lifecycle phase.
type State int32

const (
	StateIdle State = iota
	StateInitializing
	StateRunning
	StateDraining
	StateTerminated
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
