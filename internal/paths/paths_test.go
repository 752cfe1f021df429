package paths

import (
	"path/filepath"
	"testing"
)

func TestConfigFile_HonorsXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := ConfigFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(dir, "snaptile", "config.yaml")
	if got != want {
		t.Fatalf("ConfigFile() = %q, want %q", got, want)
	}
}

func TestDataDir_HonorsXDGDataHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DataDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(dir, "snaptile")
	if got != want {
		t.Fatalf("DataDir() = %q, want %q", got, want)
	}

	db, err := DatabaseFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != filepath.Join(want, "snaptile.db") {
		t.Fatalf("DatabaseFile() = %q", db)
	}
}

func TestDataDir_FallsBackToHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")

	got, err := DataDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(got) != "snaptile" {
		t.Fatalf("expected snaptile dir, got %q", got)
	}
}
