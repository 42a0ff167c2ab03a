// Package version exposes the momo build version.
package version

// version is overridden at build time via -ldflags.
var version = "dev" //nolint:gochecknoglobals // ldflags requires package-level var

// String returns the version stamped into this build.
func String() string {
	return version
}
