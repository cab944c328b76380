// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports -fps, -no-timer, -drain, -esc-timeout, -sync, -log-file, -verbose, -config, -version

package main

import (
	"flag"
	"io"
	"time"
)

type cliArgs struct {
	fps        int
	noTimer    bool
	drain      time.Duration
	escTimeout time.Duration
	syncFrames bool
	logFile    string
	verbose    bool
	configPath string
	version    bool
}

func parseFlags(argv []string, output io.Writer) (cliArgs, error) {
	var args cliArgs

	fs := flag.NewFlagSet("termport", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&args.fps, "fps", 0, "Timer ticks per second (default from config, else 60)")
	fs.BoolVar(&args.noTimer, "no-timer", false, "Disable the timer port")
	fs.DurationVar(&args.drain, "drain", 0, "Grace period for flushing output on exit (default 500ms)")
	fs.DurationVar(&args.escTimeout, "esc-timeout", 0, "Wait for the rest of an escape sequence (default 50ms)")
	fs.BoolVar(&args.syncFrames, "sync", false, "Wrap output in synchronized-update markers")
	fs.StringVar(&args.logFile, "log-file", "", "Write logs to this file instead of stderr")
	fs.BoolVar(&args.verbose, "verbose", false, "Debug logging (to ~/.termport/termport.log unless -log-file is set)")
	fs.StringVar(&args.configPath, "config", "", "Load settings from this file only")
	fs.BoolVar(&args.version, "version", false, "Show version and exit")

	if err := fs.Parse(argv); err != nil {
		return args, err
	}
	return args, nil
}
