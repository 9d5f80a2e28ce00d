// Package version exposes the build version string reported in the
// User-Agent header.
package version

// Version is overridable at build time via -ldflags.
var Version = "0.1.0"
