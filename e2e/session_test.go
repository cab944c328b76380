// ABOUTME: In-process harness running the counter on the bridge over a real pseudo-terminal
// ABOUTME: Provides send, expect, and exit helpers shared by the end-to-end tests

//go:build unix

package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/mauromedda/termport/internal/counter"
	"github.com/mauromedda/termport/pkg/bridge"
	"github.com/mauromedda/termport/pkg/tui/terminal"
)

type runResult struct {
	code int
	err  error
}

// session is one counter run attached to the slave side of a pty. The
// test plays the user on the master side.
type session struct {
	ptmx *os.File
	tty  *os.File
	term *terminal.ProcessTerminal

	// cooked is the tty state before the bridge touched it.
	cooked *term.State

	mu  sync.Mutex
	out bytes.Buffer

	done chan runResult
}

func startTermport(t *testing.T, opts ...bridge.Option) *session {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e tests skipped in short mode")
	}

	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 24, Cols: 80}); err != nil {
		t.Fatalf("Setsize: %v", err)
	}

	cooked, err := term.GetState(int(tty.Fd()))
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}

	s := &session{
		ptmx:   ptmx,
		tty:    tty,
		term:   terminal.NewProcessTerminalFiles(tty, tty),
		cooked: cooked,
		done:   make(chan runResult, 1),
	}
	go func() {
		_, _ = io.Copy(s, ptmx)
	}()

	opts = append([]bridge.Option{bridge.WithSignalChannel(make(chan os.Signal))}, opts...)
	b := bridge.New(s.term, tty, tty, opts...)
	go func() {
		code, err := b.Run(context.Background(), counter.New())
		s.done <- runResult{code, err}
	}()
	return s
}

// Write collects terminal output read from the pty master.
func (s *session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Write(p)
}

func (s *session) output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.String()
}

func (s *session) send(t *testing.T, data string) {
	t.Helper()
	if _, err := s.ptmx.Write([]byte(data)); err != nil {
		t.Fatalf("writing to pty: %v", err)
	}
}

func (s *session) expectStringTimeout(t *testing.T, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if strings.Contains(s.output(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("output never contained %q; got:\n%q", want, s.output())
}

func (s *session) waitExit(t *testing.T, timeout time.Duration) runResult {
	t.Helper()
	select {
	case r := <-s.done:
		return r
	case <-time.After(timeout):
		t.Fatal("counter did not exit")
		return runResult{}
	}
}

func (s *session) close() {
	s.term.Close()
	_ = s.tty.Close()
	_ = s.ptmx.Close()
}
