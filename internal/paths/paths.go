// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
)

// ConfigDir resolves the directory holding niritile's configuration.
// XDG_CONFIG_HOME takes precedence over ~/.config.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "niritile")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory: fall back to a relative path so the daemon
		// can still run with an explicit --config.
		return ".niritile"
	}
	return filepath.Join(home, ".config", "niritile")
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
