package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"momo/pkg/runner"
	"momo/pkg/scrollback"
)

// Config holds the tunables read from $MOMO_HOME/config.yaml. A missing file
// yields the defaults; every field is optional.
type Config struct {
	// ScrollbackLines caps the number of output lines retained in the pane.
	ScrollbackLines int `yaml:"scrollback_lines,omitempty"`
	// GraceSeconds is the SIGTERM-to-SIGKILL escalation delay on cancel.
	GraceSeconds int `yaml:"grace_seconds,omitempty"`
	// LogDir overrides the session log directory.
	LogDir string `yaml:"log_dir,omitempty"`
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		ScrollbackLines: scrollback.DefaultRetention,
		GraceSeconds:    int(runner.DefaultGracePeriod / time.Second),
	}
}

// LoadConfig reads config.yaml from path, filling unset fields with
// defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from resolved MOMO_HOME
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.ScrollbackLines > 0 {
		cfg.ScrollbackLines = file.ScrollbackLines
	}
	if file.GraceSeconds > 0 {
		cfg.GraceSeconds = file.GraceSeconds
	}
	if file.LogDir != "" {
		cfg.LogDir = file.LogDir
	}
	return cfg, nil
}

// GracePeriod returns the escalation delay as a duration.
func (c Config) GracePeriod() time.Duration {
	return time.Duration(c.GraceSeconds) * time.Second
}
