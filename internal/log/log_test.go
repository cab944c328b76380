// ABOUTME: Tests for the leveled logger
// ABOUTME: Validates level filtering, output redirection, level parsing, and the rotating file sink

package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// capture redirects output to a buffer for the duration of the test.
// Tests using it mutate package state and must not run in parallel.
func capture(t *testing.T, l slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut := SetOutput(&buf)
	prevLevel := GetLevel()
	SetLevel(l)
	t.Cleanup(func() {
		SetOutput(prevOut)
		SetLevel(prevLevel)
	})
	return &buf
}

func TestSetLevel(t *testing.T) {
	saved := GetLevel()
	defer SetLevel(saved)

	SetLevel(LevelDebug)
	if GetLevel() != LevelDebug {
		t.Errorf("expected LevelDebug, got %v", GetLevel())
	}

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("expected LevelError, got %v", GetLevel())
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, LevelWarn)

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	got := buf.String()
	for _, absent := range []string{"debug 1", "info 2"} {
		if strings.Contains(got, absent) {
			t.Errorf("output contains %q at warn level:\n%s", absent, got)
		}
	}
	for _, present := range []string{"[WARN] warn 3", "[ERROR] error 4"} {
		if !strings.Contains(got, present) {
			t.Errorf("output missing %q:\n%s", present, got)
		}
	}
}

func TestErrorAlwaysEmitted(t *testing.T) {
	buf := capture(t, slog.Level(100))

	Error("boom")
	if !strings.Contains(buf.String(), "[ERROR] boom") {
		t.Errorf("error suppressed: %q", buf.String())
	}
}

func TestDebugEmittedAtDebugLevel(t *testing.T) {
	buf := capture(t, LevelDebug)

	Debug("key %s", "up")
	if !strings.Contains(buf.String(), "[DEBUG] key up\n") {
		t.Errorf("output = %q", buf.String())
	}
	if !Enabled(LevelDebug) {
		t.Error("Enabled(LevelDebug) = false at debug level")
	}
}

func TestSetOutputNilDiscards(t *testing.T) {
	prev := SetOutput(nil)
	defer SetOutput(prev)

	// Must not panic.
	Error("discarded")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{" warning ", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOpenFile(t *testing.T) {
	prevLevel := GetLevel()
	defer SetLevel(prevLevel)
	SetLevel(LevelInfo)

	path := filepath.Join(t.TempDir(), "termport.log")
	closer, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	Info("written to %s", "file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] written to file") {
		t.Errorf("log file = %q", data)
	}
}

func TestOpenFileEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := OpenFile(""); err == nil {
		t.Error("expected error for empty path")
	}
}
