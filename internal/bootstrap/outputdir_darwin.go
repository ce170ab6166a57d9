//go:build darwin

package bootstrap

import (
	"os"
	"path/filepath"
)

func init() {
	RegisterOutputDirResolver(darwinPlistResolver{})
}

// darwinPlistResolver looks for the launcher's Application Support
// directory, the macOS analog of the Windows registry fallback in §6.
type darwinPlistResolver struct{}

func (darwinPlistResolver) Name() string { return "darwin-application-support" }

func (darwinPlistResolver) Resolve() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, "Library", "Application Support", "LOST ARK")
	if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
		return dir, nil
	}
	return "", nil
}
