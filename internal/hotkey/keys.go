package hotkey

import (
	"fmt"
	"strings"

	"snaptile/internal/platform"
)

// Binding is a parsed hotkey combination. The canonical string form
// ("Ctrl+Shift+S", modifiers in fixed order, key token normalized) is the
// uniqueness key for hotkeys; comparisons on canonical strings are exact,
// which makes Keys uniqueness case-insensitive uniformly.
type Binding struct {
	modifiers platform.ModMask
	keyCode   uint32
	modNames  []string
	keyName   string
	canonical string
}

func (b Binding) Modifiers() platform.ModMask { return b.modifiers }
func (b Binding) KeyCode() uint32             { return b.keyCode }
func (b Binding) ModifierNames() []string     { return b.modNames }
func (b Binding) KeyName() string             { return b.keyName }
func (b Binding) Canonical() string           { return b.canonical }

var modifierByName = map[string]platform.ModMask{
	"CTRL":    platform.ModControl,
	"CONTROL": platform.ModControl,
	"SHIFT":   platform.ModShift,
	"ALT":     platform.ModAlt,
	"WIN":     platform.ModSuper,
	"SUPER":   platform.ModSuper,
	"META":    platform.ModSuper,
}

// Keysym values from X11 keysymdef.h for the named keys we accept.
var keysymByName = map[string]struct {
	code uint32
	name string
}{
	"SPACE":     {0x0020, "Space"},
	"TAB":       {0xFF09, "Tab"},
	"ENTER":     {0xFF0D, "Enter"},
	"RETURN":    {0xFF0D, "Enter"},
	"ESC":       {0xFF1B, "Escape"},
	"ESCAPE":    {0xFF1B, "Escape"},
	"BACKSPACE": {0xFF08, "Backspace"},
	"DELETE":    {0xFFFF, "Delete"},
	"INSERT":    {0xFF63, "Insert"},
	"HOME":      {0xFF50, "Home"},
	"END":       {0xFF57, "End"},
	"PAGEUP":    {0xFF55, "PageUp"},
	"PAGEDOWN":  {0xFF56, "PageDown"},
	"LEFT":      {0xFF51, "Left"},
	"UP":        {0xFF52, "Up"},
	"RIGHT":     {0xFF53, "Right"},
	"DOWN":      {0xFF54, "Down"},
}

const keysymF1 = 0xFFBE

// ParseKeys parses a combination like "Ctrl+Shift+S". Structural problems
// (no modifier, unknown modifier, missing key) are errors. An unrecognized
// key token is NOT an error: it parses to the invalid-key sentinel so the
// platform rejects the registration instead of binding the wrong key.
func ParseKeys(spec string) (Binding, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return Binding{}, fmt.Errorf("hotkey spec is empty")
	}

	parts := strings.Split(raw, "+")
	if len(parts) < 2 {
		return Binding{}, fmt.Errorf("hotkey must include modifiers and key: %q", raw)
	}

	var modifiers platform.ModMask
	for _, token := range parts[:len(parts)-1] {
		name := strings.ToUpper(strings.TrimSpace(token))
		mod, ok := modifierByName[name]
		if !ok {
			return Binding{}, fmt.Errorf("unknown modifier %q in hotkey %q", token, raw)
		}
		modifiers |= mod
	}
	if modifiers == 0 {
		return Binding{}, fmt.Errorf("at least one modifier is required: %q", raw)
	}

	keyToken := strings.TrimSpace(parts[len(parts)-1])
	if keyToken == "" {
		return Binding{}, fmt.Errorf("missing key token in hotkey %q", raw)
	}
	keyCode, keyName := parseKeyToken(keyToken)

	modNames := modifierNames(modifiers)
	return Binding{
		modifiers: modifiers,
		keyCode:   keyCode,
		modNames:  modNames,
		keyName:   keyName,
		canonical: strings.Join(append(append([]string{}, modNames...), keyName), "+"),
	}, nil
}

// Canonicalize returns the canonical Keys string for a spec, or an error
// when the spec is structurally invalid.
func Canonicalize(spec string) (string, error) {
	b, err := ParseKeys(spec)
	if err != nil {
		return "", err
	}
	return b.Canonical(), nil
}

func parseKeyToken(raw string) (uint32, string) {
	token := strings.ToUpper(raw)

	if ks, ok := keysymByName[token]; ok {
		return ks.code, ks.name
	}

	// F1..F20
	if len(token) >= 2 && token[0] == 'F' {
		n := 0
		valid := true
		for _, r := range token[1:] {
			if r < '0' || r > '9' {
				valid = false
				break
			}
			n = n*10 + int(r-'0')
		}
		if valid && n >= 1 && n <= 20 {
			return keysymF1 + uint32(n-1), fmt.Sprintf("F%d", n)
		}
	}

	if len(token) == 1 {
		ch := token[0]
		if ch >= 'A' && ch <= 'Z' {
			// Letter keysyms are the lowercase codepoints.
			return uint32(ch) + 0x20, string(ch)
		}
		if ch >= '0' && ch <= '9' {
			return uint32(ch), string(ch)
		}
	}

	return platform.InvalidKeyCode, raw
}

// modifierNames renders a mask in fixed canonical order.
func modifierNames(mask platform.ModMask) []string {
	var names []string
	if mask&platform.ModControl != 0 {
		names = append(names, "Ctrl")
	}
	if mask&platform.ModAlt != 0 {
		names = append(names, "Alt")
	}
	if mask&platform.ModShift != 0 {
		names = append(names, "Shift")
	}
	if mask&platform.ModSuper != 0 {
		names = append(names, "Super")
	}
	return names
}
