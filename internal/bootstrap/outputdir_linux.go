//go:build linux

package bootstrap

import (
	"os"
	"path/filepath"
)

func init() {
	RegisterOutputDirResolver(linuxXDGResolver{})
}

// linuxXDGResolver looks under XDG_DATA_HOME (falling back to ~/.local/share)
// for a prior install, Linux's analog of the Windows/macOS fallbacks in §6.
// The distilled source only ever ran on Windows; this resolver exists so the
// fallback path degrades gracefully under Wine/Proton-style deployments
// rather than only ever returning "no output directory."
type linuxXDGResolver struct{}

func (linuxXDGResolver) Name() string { return "linux-xdg-data-home" }

func (linuxXDGResolver) Resolve() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(base, "lost-ark")
	if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
		return dir, nil
	}
	return "", nil
}
