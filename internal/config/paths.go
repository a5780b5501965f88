package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "DEVICEMAP_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "devicemap.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "devicemap"
)

// FindConfigPath searches for config file in priority order:
// 1. $DEVICEMAP_CONFIG (explicit path)
// 2. ./devicemap.yaml, then ./devicemap.toml (working directory)
// 3. $XDG_CONFIG_HOME/devicemap/config.{yaml,toml}
// 4. ~/.config/devicemap/config.{yaml,toml}
// 5. /etc/devicemap/config.{yaml,toml}
//
// Returns empty string if no config file found
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	for _, name := range []string{ConfigFileName, "devicemap.toml"} {
		if fileExists(name) {
			if abs, err := filepath.Abs(name); err == nil {
				return abs
			}
			return name
		}
	}

	var dirs []string
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		dirs = append(dirs, filepath.Join(xdgHome, ConfigDirName))
	}
	if home := os.Getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", ConfigDirName))
	}
	dirs = append(dirs, filepath.Join("/etc", ConfigDirName))

	for _, dir := range dirs {
		for _, name := range []string{"config.yaml", "config.toml"} {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				return path
			}
		}
	}

	return ""
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
