// Package config resolves chatmd's configuration directory and settings file.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chatmd"

// Dir returns the chatmd configuration directory.
//
// Resolution:
//   - $CHATMD_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/chatmd if set (respects XDG on any platform)
//   - %AppData%/chatmd on Windows
//   - ~/.config/chatmd on macOS and Linux
func Dir() string {
	if dir := os.Getenv("CHATMD_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DefaultPath returns the settings file location inside Dir.
// Returns empty string when no config directory can be resolved.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}
