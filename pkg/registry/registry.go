// Package registry holds the catalog of diagnostic tests and the one-time
// tool-availability probe. TestSpecs are immutable; availability is resolved
// once at startup and treated as read-only for the rest of the session.
package registry

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrUnknownTest is returned by Resolve for a name absent from the catalog.
var ErrUnknownTest = errors.New("unknown test")

// DevicePlaceholder marks the position in an argv where a user-selected
// block device path is substituted (e.g. /dev/sda).
const DevicePlaceholder = "DEVICE_PLACEHOLDER"

// TestSpec describes one diagnostic test: a display name, the command argv,
// and the binary whose presence gates the test.
type TestSpec struct {
	Name string
	Argv []string
	Tool string
}

// NeedsDevice reports whether the spec's argv contains the device
// placeholder and therefore requires disk selection before launch.
func (s TestSpec) NeedsDevice() bool {
	for _, a := range s.Argv {
		if a == DevicePlaceholder {
			return true
		}
	}
	return false
}

// WithDevice returns a copy of the spec with every occurrence of the device
// placeholder replaced by device (a full /dev path).
func (s TestSpec) WithDevice(device string) TestSpec {
	argv := make([]string, len(s.Argv))
	for i, a := range s.Argv {
		if a == DevicePlaceholder {
			argv[i] = device
		} else {
			argv[i] = a
		}
	}
	s.Argv = argv
	return s
}

// Command renders the argv as a single display string for headers and logs.
func (s TestSpec) Command() string {
	out := ""
	for i, a := range s.Argv {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}

// Registry maps test names to specs and caches the availability probe.
type Registry struct {
	specs []TestSpec
	index map[string]int
	avail map[string]bool

	// lookPath resolves a binary name on PATH. Tests override this to
	// simulate missing tools without touching the real environment.
	lookPath func(string) (string, error)
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithLookPath replaces the PATH resolver used by the availability probe.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(r *Registry) { r.lookPath = fn }
}

// New builds a Registry from specs and runs the availability probe once.
// Later specs with a duplicate name replace earlier ones, which is how user
// catalog overrides shadow builtins.
func New(specs []TestSpec, opts ...Option) *Registry {
	r := &Registry{
		index:    make(map[string]int),
		avail:    make(map[string]bool),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, spec := range specs {
		if i, ok := r.index[spec.Name]; ok {
			r.specs[i] = spec
			continue
		}
		r.index[spec.Name] = len(r.specs)
		r.specs = append(r.specs, spec)
	}

	// Probe each distinct tool exactly once for the session.
	for _, spec := range r.specs {
		if _, done := r.avail[spec.Tool]; done {
			continue
		}
		_, err := r.lookPath(spec.Tool)
		r.avail[spec.Tool] = err == nil
	}

	return r
}

// Resolve returns the spec for name, or ErrUnknownTest.
func (r *Registry) Resolve(name string) (TestSpec, error) {
	i, ok := r.index[name]
	if !ok {
		return TestSpec{}, fmt.Errorf("%w: %q", ErrUnknownTest, name)
	}
	return r.specs[i], nil
}

// IsAvailable reports the cached probe result for the spec's tool.
func (r *Registry) IsAvailable(spec TestSpec) bool {
	return r.avail[spec.Tool]
}

// Specs returns the catalog in menu order.
func (r *Registry) Specs() []TestSpec {
	out := make([]TestSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Names returns the test names in menu order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, s := range r.specs {
		names[i] = s.Name
	}
	return names
}
