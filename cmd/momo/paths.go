package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// momoDir is the state directory under the user's home.
const momoDir = ".momo"

// Paths holds all resolved momo state file paths.
// Use ResolvePaths() to populate this struct with defaults + env overrides.
type Paths struct {
	MomoHome      string // ~/.momo or MOMO_HOME
	LogDir        string // logs/ or MOMO_LOG_DIR
	HistoryDBPath string // history.db or MOMO_DB_PATH
	ConfigPath    string // config.yaml
	TestsPath     string // tests.toml (user catalog overrides)
}

// ResolvePaths returns all momo paths, respecting env var overrides.
// Environment variables:
//   - MOMO_HOME: base directory for all momo state (default: ~/.momo)
//   - MOMO_LOG_DIR: session log directory (default: $MOMO_HOME/logs)
//   - MOMO_DB_PATH: run history database (default: $MOMO_HOME/history.db)
func ResolvePaths() (*Paths, error) {
	home, err := resolveMomoHome()
	if err != nil {
		return nil, err
	}

	return &Paths{
		MomoHome:      home,
		LogDir:        resolvePathWithEnv("MOMO_LOG_DIR", home, "logs"),
		HistoryDBPath: resolvePathWithEnv("MOMO_DB_PATH", home, "history.db"),
		ConfigPath:    filepath.Join(home, "config.yaml"),
		TestsPath:     filepath.Join(home, "tests.toml"),
	}, nil
}

// resolveMomoHome returns the state directory from MOMO_HOME or ~/.momo.
func resolveMomoHome() (string, error) {
	if v := os.Getenv("MOMO_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, momoDir), nil
}

// resolvePathWithEnv returns the path from envKey if set, otherwise joins base + suffix.
func resolvePathWithEnv(envKey, base, suffix string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return filepath.Join(base, suffix)
}
