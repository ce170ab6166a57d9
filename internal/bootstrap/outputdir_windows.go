//go:build windows

package bootstrap

import "golang.org/x/sys/windows/registry"

func init() {
	RegisterOutputDirResolver(windowsRegistryResolver{})
}

// windowsRegistryResolver reads the install path the original launcher
// leaves under HKEY_CURRENT_USER, the OS-specific fallback §6 describes.
type windowsRegistryResolver struct{}

func (windowsRegistryResolver) Name() string { return "windows-registry" }

func (windowsRegistryResolver) Resolve() (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, `Software\PmangGames\LostArk`, registry.QUERY_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return "", nil
		}
		return "", err
	}
	defer k.Close()

	dir, _, err := k.GetStringValue("InstallPath")
	if err != nil {
		if err == registry.ErrNotExist {
			return "", nil
		}
		return "", err
	}
	return dir, nil
}
