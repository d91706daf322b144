// Package version exposes build metadata for the COFRN binaries.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds.
// Short and Full render the version string for CLI output and logs; Info
// returns the same data for the /debug/about endpoint.
package version
