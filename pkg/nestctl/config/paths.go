package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "nestctl"
	defaultConfigFile    = "config.yaml"
)

// DefaultConfigDir returns the per-user directory holding settings and secrets.
func DefaultConfigDir() string {
	if env := os.Getenv("NESTCTL_CONFIG_DIR"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "."+defaultConfigDirName)
}

func DefaultConfigPath() string {
	if env := os.Getenv("NESTCTL_CONFIG"); env != "" {
		return env
	}
	return filepath.Join(DefaultConfigDir(), defaultConfigFile)
}
