// Package build exposes build-time metadata injected via ldflags.
package build

import "runtime"

// Version, Commit, and Branch are set at build time by:
//
//	-ldflags "-X github.com/joestump/bookmarks/internal/build.Version=... ..."
var (
	Version = "dev"
	Commit  = "unknown"
	Branch  = "unknown"
)

// GoVersion reports the toolchain the binary was built with.
func GoVersion() string { return runtime.Version() }
