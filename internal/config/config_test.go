package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabasePath == "" {
		t.Fatalf("expected default database path")
	}
	if len(cfg.Hotkeys) == 0 {
		t.Fatalf("expected default hotkey bindings")
	}
}

func TestLoadFromPath_FillsUnsetFieldsFromDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("hotkeys:\n  - keys: Ctrl+Alt+W\n    action: restore_layout\n    layout: work\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabasePath == "" || cfg.ExportDir == "" {
		t.Fatalf("expected paths filled from defaults, got %+v", cfg)
	}
	if len(cfg.Hotkeys) != 1 {
		t.Fatalf("expected 1 hotkey, got %d", len(cfg.Hotkeys))
	}
	hk := cfg.Hotkeys[0]
	if hk.Keys != "Ctrl+Alt+W" || hk.Action != "restore_layout" || hk.Layout != "work" {
		t.Fatalf("unexpected hotkey: %+v", hk)
	}
}

func TestLoadFromPath_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("hotkeys: [what"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate_RejectsBadBindings(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "missing keys",
			cfg:  Config{Hotkeys: []HotkeyBinding{{Action: "save_layout"}}},
		},
		{
			name: "missing action",
			cfg:  Config{Hotkeys: []HotkeyBinding{{Keys: "Ctrl+S"}}},
		},
		{
			name: "duplicate keys",
			cfg: Config{Hotkeys: []HotkeyBinding{
				{Keys: "Ctrl+S", Action: "save_layout"},
				{Keys: "Ctrl+S", Action: "restore_layout"},
			}},
		},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}
}

func TestValidate_AcceptsDistinctBindings(t *testing.T) {
	cfg := Config{Hotkeys: []HotkeyBinding{
		{Keys: "Ctrl+Shift+S", Action: "save_layout"},
		{Keys: "Ctrl+Shift+R", Action: "restore_layout"},
	}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
