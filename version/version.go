// Package version holds the build-time version string, overridable via
// -ldflags "-X github.com/mzhou/fast-dl/version.Version=...".
package version

// Version is the CLI's reported version; "dev" for unreleased builds.
var Version = "dev"
