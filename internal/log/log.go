// ABOUTME: Leveled printf-style logger shared by the runtime and the demo command
// ABOUTME: Writes to stderr by default; OpenFile switches to a rotating file so logs never land on the raw-mode screen

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var level atomic.Int64

var (
	outMu sync.Mutex
	out   io.Writer = os.Stderr
)

func init() {
	level.Store(int64(LevelInfo))
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Store(int64(l))
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return slog.Level(level.Load())
}

// Enabled reports whether messages at l are emitted.
func Enabled(l slog.Level) bool {
	return l >= GetLevel()
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetOutput redirects all log output and returns the previous writer.
// A nil writer discards output.
func SetOutput(w io.Writer) io.Writer {
	if w == nil {
		w = io.Discard
	}
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return prev
}

// OpenFile routes log output to a size-rotated file at path. The returned
// closer restores the previous output and closes the file.
func OpenFile(path string) (io.Closer, error) {
	if path == "" {
		return nil, fmt.Errorf("opening log file: empty path")
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	// Fail early on unwritable paths rather than on the first message.
	if _, err := lj.Write(nil); err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	prev := SetOutput(lj)
	return closerFunc(func() error {
		SetOutput(prev)
		return lj.Close()
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) {
	logf(LevelDebug, "[DEBUG] ", format, args...)
}

// Info logs an info message if the level allows it.
func Info(format string, args ...any) {
	logf(LevelInfo, "[INFO] ", format, args...)
}

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) {
	logf(LevelWarn, "[WARN] ", format, args...)
}

// Error logs an error message (always emitted).
func Error(format string, args ...any) {
	logf(LevelError, "[ERROR] ", format, args...)
}

func logf(l slog.Level, prefix, format string, args ...any) {
	if l < LevelError && !Enabled(l) {
		return
	}
	msg := fmt.Sprintf(prefix+format+"\n", args...)

	outMu.Lock()
	defer outMu.Unlock()
	if out == os.Stderr {
		_, _ = io.WriteString(out, msg)
		return
	}
	// Files get timestamps; the terminal does not need them.
	_, _ = io.WriteString(out, time.Now().Format("2006-01-02T15:04:05.000 ")+msg)
}
