package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// HomeEnvVar overrides the cipherkit home directory.
	HomeEnvVar = "CIPHERKIT_HOME"
	// DefaultHomeDir is the directory under the user's home.
	DefaultHomeDir = ".cipherkit"

	ConfigFileName  = "config.toml"
	HistoryFileName = "history.db"
	LogFileName     = "cipherkit.log"
)

// GetHome returns the cipherkit home directory, honouring CIPHERKIT_HOME.
func GetHome() (string, error) {
	if env := os.Getenv(HomeEnvVar); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultHomeDir), nil
}

// EnsureHome returns the home directory, creating it if needed.
func EnsureHome() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", home, err)
	}
	return home, nil
}

// GetConfigPath returns <home>/config.toml.
func GetConfigPath() (string, error) {
	return inHome(ConfigFileName)
}

// GetHistoryPath returns <home>/history.db.
func GetHistoryPath() (string, error) {
	return inHome(HistoryFileName)
}

// GetLogPath returns <home>/logs/cipherkit.log.
func GetLogPath() (string, error) {
	return inHome(filepath.Join("logs", LogFileName))
}

func inHome(name string) (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, name), nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
// Other paths are returned cleaned but otherwise untouched.
func ExpandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	if path == "" {
		return "", nil
	}
	return filepath.Clean(path), nil
}
