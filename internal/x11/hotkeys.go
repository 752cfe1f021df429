package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"snaptile/internal/platform"
)

// ignoredMods are modifier bits masked out when matching key presses:
// CapsLock (Lock) and NumLock (Mod2) must not change hotkey identity.
const ignoredMods = xproto.ModMaskLock | xproto.ModMask2

// maxHotkeys is a self-imposed cap; X11 itself has no fixed limit.
const maxHotkeys = 64

// HotkeyBackend implements platform.HotkeyAPI with passive key grabs on
// the root window. Presses are reported through the onPress handler with
// the caller-chosen platform ID.
type HotkeyBackend struct {
	conn    *Connection
	onPress func(platformID int)

	mu    sync.Mutex
	grabs map[int]grabbedKey
}

type grabbedKey struct {
	modifiers uint16
	keycode   xproto.Keycode
}

func NewHotkeyBackend(conn *Connection, onPress func(platformID int)) *HotkeyBackend {
	b := &HotkeyBackend{
		conn:    conn,
		onPress: onPress,
		grabs:   make(map[int]grabbedKey),
	}
	xevent.KeyPressFun(b.handleKeyPress).Connect(conn.XUtil, conn.Root)
	return b
}

// RegisterHotkey grabs the key combination on the root window. Each
// combination is grabbed with every CapsLock/NumLock variant so those
// lock states do not swallow presses.
func (b *HotkeyBackend) RegisterHotkey(platformID int, modifiers platform.ModMask, keyCode uint32) error {
	if keyCode == platform.InvalidKeyCode {
		return fmt.Errorf("unsupported key code")
	}

	keycode, err := b.keycodeForKeysym(xproto.Keysym(keyCode))
	if err != nil {
		return err
	}

	mods := uint16(modifiers)
	conn := b.conn.XUtil.Conn()
	for _, extra := range lockVariants() {
		err := xproto.GrabKeyChecked(
			conn,
			true,
			b.conn.Root,
			mods|extra,
			keycode,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Check()
		if err != nil {
			b.ungrab(mods, keycode)
			return fmt.Errorf("grab key failed (already grabbed by another client?): %w", err)
		}
	}

	b.mu.Lock()
	b.grabs[platformID] = grabbedKey{modifiers: mods, keycode: keycode}
	b.mu.Unlock()
	return nil
}

func (b *HotkeyBackend) UnregisterHotkey(platformID int) error {
	b.mu.Lock()
	grab, ok := b.grabs[platformID]
	delete(b.grabs, platformID)
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("platform id %d is not registered", platformID)
	}
	b.ungrab(grab.modifiers, grab.keycode)
	return nil
}

func (b *HotkeyBackend) SystemInfo() platform.HotkeySystemInfo {
	return platform.HotkeySystemInfo{
		SupportsGlobalHotkeys: true,
		MaxHotkeyCount:        maxHotkeys,
		Limitations:           "key grabs fail when another X11 client already holds the combination",
	}
}

func (b *HotkeyBackend) handleKeyPress(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	state := ev.State &^ ignoredMods

	b.mu.Lock()
	platformID := -1
	for id, grab := range b.grabs {
		if grab.keycode == ev.Detail && grab.modifiers == state {
			platformID = id
			break
		}
	}
	b.mu.Unlock()

	if platformID >= 0 && b.onPress != nil {
		b.onPress(platformID)
	}
}

func (b *HotkeyBackend) ungrab(mods uint16, keycode xproto.Keycode) {
	conn := b.conn.XUtil.Conn()
	for _, extra := range lockVariants() {
		xproto.UngrabKey(conn, keycode, b.conn.Root, mods|extra)
	}
}

// keycodeForKeysym scans the server keyboard mapping for a keycode that
// produces the given keysym in any column.
func (b *HotkeyBackend) keycodeForKeysym(keysym xproto.Keysym) (xproto.Keycode, error) {
	setup := xproto.Setup(b.conn.XUtil.Conn())
	minCode := setup.MinKeycode
	maxCode := setup.MaxKeycode

	mapping, err := xproto.GetKeyboardMapping(
		b.conn.XUtil.Conn(),
		minCode,
		byte(maxCode-minCode+1),
	).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to get keyboard mapping: %w", err)
	}

	perCode := int(mapping.KeysymsPerKeycode)
	for i, sym := range mapping.Keysyms {
		if sym == keysym {
			return minCode + xproto.Keycode(i/perCode), nil
		}
	}
	return 0, fmt.Errorf("no keycode maps to keysym 0x%x", keysym)
}

func lockVariants() []uint16 {
	return []uint16{0, xproto.ModMaskLock, xproto.ModMask2, xproto.ModMaskLock | xproto.ModMask2}
}
