// ABOUTME: Environment handling for settings: ${VAR} expansion and TERMPORT_* overrides
// ABOUTME: Unset ${VAR} references become empty; malformed overrides are reported, not ignored

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// Environment variables that override file settings.
const (
	EnvFPS          = "TERMPORT_FPS"
	EnvTimer        = "TERMPORT_TIMER"
	EnvDrainTimeout = "TERMPORT_DRAIN_TIMEOUT"
	EnvEscTimeout   = "TERMPORT_ESC_TIMEOUT"
	EnvSyncFrames   = "TERMPORT_SYNC_FRAMES"
	EnvLogLevel     = "TERMPORT_LOG_LEVEL"
	EnvLogFile      = "TERMPORT_LOG_FILE"
)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings.
func ResolveEnvVars(s *Settings) {
	s.LogLevel = expandEnv(s.LogLevel)
	s.LogFile = expandEnv(s.LogFile)
}

// ApplyEnvOverrides copies set TERMPORT_* variables onto s.
func ApplyEnvOverrides(s *Settings) error {
	var errs []error

	if v, ok := os.LookupEnv(EnvFPS); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvFPS, err))
		} else {
			s.FPS = n
		}
	}
	if v, ok := os.LookupEnv(EnvTimer); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvTimer, err))
		} else {
			s.Timer = &b
		}
	}
	if v, ok := os.LookupEnv(EnvSyncFrames); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSyncFrames, err))
		} else {
			s.SyncFrames = &b
		}
	}
	if v, ok := os.LookupEnv(EnvDrainTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvDrainTimeout, err))
		} else {
			s.DrainTimeout = Duration(d)
		}
	}
	if v, ok := os.LookupEnv(EnvEscTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvEscTimeout, err))
		} else {
			s.EscTimeout = Duration(d)
		}
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		s.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		s.LogFile = expandEnv(v)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
