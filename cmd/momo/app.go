package main

import (
	"fmt"
	"os"

	"momo/pkg/history"
	"momo/pkg/registry"
	"momo/pkg/runner"
)

// app bundles the wired core components shared by the TUI and the headless
// subcommands.
type app struct {
	paths *Paths
	cfg   Config
	reg   *registry.Registry
	run   *runner.Runner
	store *history.Store // nil when the history db could not be opened
}

// newApp resolves paths, loads configuration and catalog overrides, probes
// tool availability, and wires the runner. History persistence is best
// effort: a failure to open the database degrades to a warning.
func newApp() (*app, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(paths.ConfigPath)
	if err != nil {
		return nil, err
	}

	logDir := paths.LogDir
	if cfg.LogDir != "" {
		logDir = cfg.LogDir
	}

	specs := registry.Builtins()
	overrides, err := registry.LoadOverrides(paths.TestsPath)
	if err != nil {
		return nil, err
	}
	specs = append(specs, overrides...)
	reg := registry.New(specs)

	a := &app{
		paths: paths,
		cfg:   cfg,
		reg:   reg,
		run:   runner.New(reg, logDir, runner.WithGracePeriod(cfg.GracePeriod())),
	}

	if err := os.MkdirAll(paths.MomoHome, 0o700); err != nil {
		return nil, fmt.Errorf("create momo home %s: %w", paths.MomoHome, err)
	}
	store, err := history.Open(paths.HistoryDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; run history disabled\n", err)
	} else {
		a.store = store
	}

	return a, nil
}

// logDir returns the effective session log directory.
func (a *app) logDir() string {
	if a.cfg.LogDir != "" {
		return a.cfg.LogDir
	}
	return a.paths.LogDir
}

// recorder returns the history store as a runner.Recorder, or nil.
func (a *app) recorder() runner.Recorder {
	if a.store == nil {
		return nil
	}
	return a.store
}

// close releases held resources.
func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}
