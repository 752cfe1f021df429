package hotkey

import (
	"testing"

	"snaptile/internal/platform"
)

func TestParseKeys_CanonicalModifierOrder(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"Ctrl+Shift+S", "Ctrl+Shift+S"},
		{"shift+ctrl+s", "Ctrl+Shift+S"},
		{"SHIFT+CONTROL+s", "Ctrl+Shift+S"},
		{"super+alt+shift+ctrl+F5", "Ctrl+Alt+Shift+Super+F5"},
		{"win+d", "Super+D"},
		{"meta+Tab", "Super+Tab"},
		{"ctrl+return", "Ctrl+Enter"},
		{"ctrl+escape", "Ctrl+Escape"},
		{"alt+pageup", "Alt+PageUp"},
		{"ctrl+9", "Ctrl+9"},
	}
	for _, tt := range tests {
		b, err := ParseKeys(tt.spec)
		if err != nil {
			t.Fatalf("ParseKeys(%q): unexpected error: %v", tt.spec, err)
		}
		if b.Canonical() != tt.want {
			t.Fatalf("ParseKeys(%q): canonical = %q, want %q", tt.spec, b.Canonical(), tt.want)
		}
	}
}

func TestParseKeys_CaseInsensitiveSpecsShareCanonicalForm(t *testing.T) {
	a, err := ParseKeys("CTRL+SHIFT+S")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ParseKeys("ctrl+shift+s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Canonical() != b.Canonical() {
		t.Fatalf("expected matching canonical forms, got %q and %q", a.Canonical(), b.Canonical())
	}
	if a.KeyCode() != b.KeyCode() || a.Modifiers() != b.Modifiers() {
		t.Fatalf("expected matching codes for case variants")
	}
}

func TestParseKeys_StructuralErrors(t *testing.T) {
	specs := []string{
		"",
		"   ",
		"S",          // no modifier
		"Ctrl+",      // missing key token
		"Banana+S",   // unknown modifier
		"Ctrl+Foo+S", // unknown modifier in the middle
	}
	for _, spec := range specs {
		if _, err := ParseKeys(spec); err == nil {
			t.Fatalf("ParseKeys(%q): expected error, got none", spec)
		}
	}
}

func TestParseKeys_UnknownKeyTokenIsNotAnError(t *testing.T) {
	b, err := ParseKeys("Ctrl+Banana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.KeyCode() != platform.InvalidKeyCode {
		t.Fatalf("expected invalid-key sentinel, got %#x", b.KeyCode())
	}
	if b.KeyName() != "Banana" {
		t.Fatalf("expected raw key name preserved, got %q", b.KeyName())
	}
}

func TestParseKeys_KeyCodes(t *testing.T) {
	tests := []struct {
		spec string
		want uint32
	}{
		{"Ctrl+A", 0x61}, // letter keysyms are lowercase codepoints
		{"Ctrl+Z", 0x7A},
		{"Ctrl+0", 0x30},
		{"Ctrl+F1", 0xFFBE},
		{"Ctrl+F20", 0xFFBE + 19},
		{"Ctrl+Space", 0x20},
		{"Ctrl+Left", 0xFF51},
	}
	for _, tt := range tests {
		b, err := ParseKeys(tt.spec)
		if err != nil {
			t.Fatalf("ParseKeys(%q): unexpected error: %v", tt.spec, err)
		}
		if b.KeyCode() != tt.want {
			t.Fatalf("ParseKeys(%q): keycode = %#x, want %#x", tt.spec, b.KeyCode(), tt.want)
		}
	}
}

func TestParseKeys_ModifierMask(t *testing.T) {
	b, err := ParseKeys("Ctrl+Alt+Shift+Super+S")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := platform.ModControl | platform.ModAlt | platform.ModShift | platform.ModSuper
	if b.Modifiers() != want {
		t.Fatalf("modifiers = %#x, want %#x", b.Modifiers(), want)
	}
}

func TestCanonicalize_RejectsInvalidSpec(t *testing.T) {
	if _, err := Canonicalize("NoModifier"); err == nil {
		t.Fatalf("expected error for spec without modifiers")
	}
	got, err := Canonicalize("shift+alt+x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Alt+Shift+X" {
		t.Fatalf("canonical = %q, want %q", got, "Alt+Shift+X")
	}
}
