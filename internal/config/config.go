package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"snaptile/internal/paths"
)

// HotkeyBinding declares a hotkey to register at daemon startup.
type HotkeyBinding struct {
	Keys   string `yaml:"keys"`
	Action string `yaml:"action"`
	Layout string `yaml:"layout,omitempty"`
}

// Config is the snaptile configuration.
type Config struct {
	// DatabasePath locates the embedded layout/hotkey database.
	DatabasePath string `yaml:"database"`
	// ExportDir is the default directory for layout export files.
	ExportDir string `yaml:"export_dir"`
	// Hotkeys are bootstrap bindings registered when the daemon starts.
	Hotkeys []HotkeyBinding `yaml:"hotkeys"`
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	return paths.ConfigFile()
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	databasePath, err := paths.DatabaseFile()
	if err != nil {
		return nil, err
	}
	exportDir, err := paths.ExportDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DatabasePath: databasePath,
		ExportDir:    exportDir,
		Hotkeys: []HotkeyBinding{
			{Keys: "Ctrl+Shift+S", Action: "save_layout"},
			{Keys: "Ctrl+Shift+R", Action: "restore_layout"},
		},
	}, nil
}

// Load reads the configuration from the standard location. A missing
// file yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates a config file, filling unset fields
// from the defaults.
func LoadFromPath(path string) (*Config, error) {
	defaults, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaults.DatabasePath
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = defaults.ExportDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the declared hotkey bindings for obvious mistakes.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i, hk := range c.Hotkeys {
		if hk.Keys == "" {
			return fmt.Errorf("hotkeys[%d]: keys is required", i)
		}
		if hk.Action == "" {
			return fmt.Errorf("hotkeys[%d]: action is required", i)
		}
		if seen[hk.Keys] {
			return fmt.Errorf("hotkeys[%d]: duplicate keys %q", i, hk.Keys)
		}
		seen[hk.Keys] = true
	}
	return nil
}
