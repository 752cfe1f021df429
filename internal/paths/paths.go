package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFile returns the config file location. Priority:
// 1) XDG_CONFIG_HOME/snaptile/config.yaml (if set)
// 2) ~/.config/snaptile/config.yaml
func ConfigFile() (string, error) {
	if configDir := os.Getenv("XDG_CONFIG_HOME"); configDir != "" {
		return filepath.Join(configDir, "snaptile", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "snaptile", "config.yaml"), nil
}

// DataDir returns the directory for the database and export files.
// Priority:
// 1) XDG_DATA_HOME/snaptile (if set)
// 2) ~/.local/share/snaptile
func DataDir() (string, error) {
	if dataDir := os.Getenv("XDG_DATA_HOME"); dataDir != "" {
		return filepath.Join(dataDir, "snaptile"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "snaptile"), nil
}

// DatabaseFile returns the default layout/hotkey database path.
func DatabaseFile() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "snaptile.db"), nil
}

// ExportDir returns the default directory for layout export files.
func ExportDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "exports"), nil
}
