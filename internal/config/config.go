// ABOUTME: Runtime settings loaded from global and project config files, JSON or YAML
// ABOUTME: Project files override global ones; TERMPORT_* variables override both

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mauromedda/termport/internal/log"
)

// DefaultFPS is the timer cadence when no setting says otherwise.
const DefaultFPS = 60

// MaxFPS bounds the timer cadence.
const MaxFPS = 240

// Duration is a time.Duration written as "500ms" or "1s" in config files.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration must be a string like \"500ms\": %s", b)
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalYAML accepts a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Settings holds the merged configuration. Pointer fields distinguish
// "unset" from an explicit false.
type Settings struct {
	FPS          int      `json:"fps,omitempty" yaml:"fps,omitempty"`
	Timer        *bool    `json:"timer,omitempty" yaml:"timer,omitempty"`
	DrainTimeout Duration `json:"drain_timeout,omitempty" yaml:"drain_timeout,omitempty"`
	EscTimeout   Duration `json:"esc_timeout,omitempty" yaml:"esc_timeout,omitempty"`
	SyncFrames   *bool    `json:"sync_frames,omitempty" yaml:"sync_frames,omitempty"`
	LogLevel     string   `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFile      string   `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// TimerEnabled reports whether the timer port should tick. Default on.
func (s *Settings) TimerEnabled() bool {
	return s.Timer == nil || *s.Timer
}

// SyncFramesEnabled reports whether output is wrapped in synchronized updates.
// Default off.
func (s *Settings) SyncFramesEnabled() bool {
	return s.SyncFrames != nil && *s.SyncFrames
}

// FrameInterval converts FPS to a tick interval. A disabled timer yields 0.
func (s *Settings) FrameInterval() time.Duration {
	if !s.TimerEnabled() {
		return 0
	}
	fps := s.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// Validate rejects values no component can honor.
func (s *Settings) Validate() error {
	var errs []error
	if s.FPS < 0 || s.FPS > MaxFPS {
		errs = append(errs, fmt.Errorf("fps %d out of range 0..%d", s.FPS, MaxFPS))
	}
	if s.DrainTimeout < 0 {
		errs = append(errs, fmt.Errorf("drain_timeout %v is negative", time.Duration(s.DrainTimeout)))
	}
	if s.EscTimeout < 0 {
		errs = append(errs, fmt.Errorf("esc_timeout %v is negative", time.Duration(s.EscTimeout)))
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Load reads and merges global and project-local settings, expands ${VAR}
// references, and applies TERMPORT_* overrides. Project settings override
// global settings.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFirst(GlobalConfigFiles())
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFirst(ProjectConfigFiles(projectRoot))
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(global, project)
	ResolveEnvVars(merged)
	if err := ApplyEnvOverrides(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// LoadFile reads one explicit config file; unlike Load a missing file is an error.
func LoadFile(path string) (*Settings, error) {
	s, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	ResolveEnvVars(s)
	if err := ApplyEnvOverrides(s); err != nil {
		return nil, err
	}
	return s, nil
}

// loadFirst loads the first existing file among paths. Returns zero
// Settings if none exists.
func loadFirst(paths []string) (*Settings, error) {
	for _, path := range paths {
		s, err := loadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		return s, err
	}
	return &Settings{}, nil
}

// loadFile reads Settings from a JSON or YAML file, chosen by extension.
// Returns zero Settings if file does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.FPS != 0 {
		result.FPS = project.FPS
	}
	if project.Timer != nil {
		result.Timer = project.Timer
	}
	if project.DrainTimeout != 0 {
		result.DrainTimeout = project.DrainTimeout
	}
	if project.EscTimeout != 0 {
		result.EscTimeout = project.EscTimeout
	}
	if project.SyncFrames != nil {
		result.SyncFrames = project.SyncFrames
	}
	if project.LogLevel != "" {
		result.LogLevel = project.LogLevel
	}
	if project.LogFile != "" {
		result.LogFile = project.LogFile
	}

	return &result
}
