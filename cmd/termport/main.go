// ABOUTME: CLI entry point for termport: runs the counter demo on the terminal runtime bridge
// ABOUTME: Loads settings, routes logs away from the screen, and exits with the bridge's exit code

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	// termfix must be imported before anything renders with lipgloss so
	// no background-colour query reply lands in stdin.
	_ "github.com/mauromedda/termport/internal/termfix"

	"github.com/mauromedda/termport/internal/config"
	"github.com/mauromedda/termport/internal/counter"
	"github.com/mauromedda/termport/internal/log"
	"github.com/mauromedda/termport/pkg/bridge"
	"github.com/mauromedda/termport/pkg/tui/terminal"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	code, err := run(os.Args[1:], os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(code)
}

// run parses flags, configures logging, and runs the counter until it exits.
func run(argv []string, stdin, stdout *os.File) (int, error) {
	args, err := parseFlags(argv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0, nil
	}
	if err != nil {
		return 2, err
	}

	if args.version {
		fmt.Fprintf(stdout, "termport %s (%s) built %s\n", version, commit, date)
		return 0, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return 1, fmt.Errorf("getting working directory: %w", err)
	}

	settings, err := loadSettings(args, cwd)
	if err != nil {
		return 1, err
	}

	closeLog, toFile, err := setupLogging(args, settings)
	if err != nil {
		return 1, err
	}
	defer closeLog.Close()

	if args.configPath == "" {
		w := config.NewSettingsWatcher(cwd, func(s *config.Settings, err error) {
			if err != nil {
				log.Warn("config reload: %v", err)
				return
			}
			if !args.verbose {
				applyLevel(s.LogLevel, toFile)
			}
		})
		w.Start()
		defer w.Stop()
	}

	term := terminal.NewProcessTerminalFiles(stdin, stdout)
	defer term.Close()
	defer terminal.RestoreOnPanic(term)

	b := bridge.New(term, stdin, stdout, bridgeOptions(settings)...)
	log.Info("termport %s starting (interactive=%v)", version, term.Interactive())
	code, err := b.Run(context.Background(), counter.New())
	log.Info("termport exiting with code %d", code)
	return code, err
}

// loadSettings reads config files and applies CLI overrides, which win.
func loadSettings(args cliArgs, cwd string) (*config.Settings, error) {
	var (
		s   *config.Settings
		err error
	)
	if args.configPath != "" {
		s, err = config.LoadFile(args.configPath)
	} else {
		s, err = config.Load(cwd)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if args.fps > 0 {
		s.FPS = args.fps
	}
	if args.noTimer {
		off := false
		s.Timer = &off
	}
	if args.drain > 0 {
		s.DrainTimeout = config.Duration(args.drain)
	}
	if args.escTimeout > 0 {
		s.EscTimeout = config.Duration(args.escTimeout)
	}
	if args.syncFrames {
		on := true
		s.SyncFrames = &on
	}
	if args.logFile != "" {
		s.LogFile = args.logFile
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// setupLogging keeps log lines off the raw-mode screen: with a log file
// they go there, otherwise only warnings and errors reach stderr.
func setupLogging(args cliArgs, s *config.Settings) (io.Closer, bool, error) {
	path := s.LogFile
	if path == "" && args.verbose {
		path = config.DefaultLogFile()
		if err := config.EnsureDir(config.GlobalDir()); err != nil {
			return nil, false, fmt.Errorf("creating %s: %w", config.GlobalDir(), err)
		}
	}
	toFile := path != ""

	applyLevel(s.LogLevel, toFile)
	if args.verbose {
		log.SetLevel(log.LevelDebug)
	}
	if !toFile {
		return nopCloser{}, false, nil
	}
	closer, err := log.OpenFile(path)
	if err != nil {
		return nil, false, err
	}
	return closer, true, nil
}

// applyLevel sets the named level; without a log file nothing below warn
// is allowed onto the terminal.
func applyLevel(name string, toFile bool) {
	l, err := log.ParseLevel(name)
	if err != nil {
		log.Warn("%v", err)
		return
	}
	if !toFile && l < log.LevelWarn {
		l = log.LevelWarn
	}
	log.SetLevel(l)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func bridgeOptions(s *config.Settings) []bridge.Option {
	opts := []bridge.Option{
		bridge.WithFrameInterval(s.FrameInterval()),
		bridge.WithSyncFrames(s.SyncFramesEnabled()),
	}
	if s.DrainTimeout > 0 {
		opts = append(opts, bridge.WithDrainTimeout(time.Duration(s.DrainTimeout)))
	}
	if s.EscTimeout > 0 {
		opts = append(opts, bridge.WithEscTimeout(time.Duration(s.EscTimeout)))
	}
	return opts
}
