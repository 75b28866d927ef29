package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv names the environment variable that overrides the mchat home directory.
const HomeEnv = "MCHAT_HOME"

// GetHome returns the mchat home directory
// Priority order:
//  1. MCHAT_HOME environment variable (if set)
//  2. .mchat under the current working directory
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = filepath.Join(cwd, ".mchat")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create mchat home directory: %w", err)
	}
	return home, nil
}

// GetLogDir returns the default run log directory under the home directory
func GetLogDir() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "logs"), nil
}

// Load reads config.yaml from the home directory
func Load() (*Config, error) {
	home, err := GetHome()
	if err != nil {
		return nil, err
	}
	return LoadConfig(filepath.Join(home, "config.yaml"))
}
