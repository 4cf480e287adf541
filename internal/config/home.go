package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// ConfigDirEnv overrides the config directory.
	ConfigDirEnv = "CIENV_CONFIG_DIR"

	// DefaultConfigDir is the config directory under the user's home.
	DefaultConfigDir = ".cienv"

	SettingsFileName = "settings.yaml"
	LogsSubdir       = "logs"
)

// ConfigDir returns $CIENV_CONFIG_DIR, or ~/.cienv.
func ConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir), nil
}

// SettingsFile returns the path of settings.yaml.
func SettingsFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// LogsDir returns the directory holding the rotating log file.
func LogsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogsSubdir), nil
}

// IsCI reports whether the process runs under a CI system. Most providers
// set CI; "false" and "0" count as unset.
func IsCI() bool {
	v := strings.TrimSpace(os.Getenv("CI"))
	switch strings.ToLower(v) {
	case "", "false", "0":
		return false
	}
	return true
}
