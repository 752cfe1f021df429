package platform

// WindowHandle is a platform-neutral identifier for a live window. Handles
// are valid only within the current desktop session and must never be
// persisted as stable keys.
type WindowHandle uint32

// MonitorHandle identifies a physical monitor for the current session.
type MonitorHandle uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// MonitorDescriptor is the raw platform view of one monitor.
type MonitorDescriptor struct {
	Handle      MonitorHandle
	Index       int
	Name        string
	IsPrimary   bool
	Bounds      Rect
	WorkingArea Rect
	Dpi         int
	RefreshRate int
}

// WindowAPI abstracts window-system operations across platforms.
// Implementations translate to the native windowing protocol; the window
// engine above never touches X11 directly.
type WindowAPI interface {
	AllWindows() ([]WindowHandle, error)
	IsWindow(h WindowHandle) bool
	IsWindowVisible(h WindowHandle) bool
	IsWindowMinimized(h WindowHandle) bool
	IsWindowMaximized(h WindowHandle) bool

	WindowText(h WindowHandle) (string, error)
	WindowClassName(h WindowHandle) (string, error)
	WindowRect(h WindowHandle) (Rect, error)
	WindowProcessID(h WindowHandle) (int, error)
	WindowMonitor(h WindowHandle) (MonitorHandle, error)

	MoveWindow(h WindowHandle, x, y int) error
	ResizeWindow(h WindowHandle, width, height int) error
	SetWindowBounds(h WindowHandle, bounds Rect) error
	MinimizeWindow(h WindowHandle) error
	MaximizeWindow(h WindowHandle) error
	RestoreWindow(h WindowHandle) error
	ShowWindow(h WindowHandle) error
	HideWindow(h WindowHandle) error
	BringWindowToFront(h WindowHandle) error

	AllMonitors() ([]MonitorDescriptor, error)
}

// ModMask is a platform modifier bitmask for hotkey registration.
type ModMask uint16

const (
	ModShift   ModMask = 1 << 0
	ModControl ModMask = 1 << 2
	ModAlt     ModMask = 1 << 3
	ModSuper   ModMask = 1 << 6
)

// InvalidKeyCode is the sentinel for an unrecognized key token. Hotkey
// backends must reject it, so unsupported tokens surface as registration
// failures instead of silently binding the wrong key.
const InvalidKeyCode uint32 = 0xFFFFFFFF

// HotkeySystemInfo reports global-hotkey capabilities of the platform.
type HotkeySystemInfo struct {
	SupportsGlobalHotkeys bool
	MaxHotkeyCount        int
	Limitations           string
}

// HotkeyAPI abstracts global hotkey registration. The platformID is a
// process-local integer chosen by the caller; backends report presses for
// it through the press handler installed at construction time.
type HotkeyAPI interface {
	RegisterHotkey(platformID int, modifiers ModMask, keyCode uint32) error
	UnregisterHotkey(platformID int) error
	SystemInfo() HotkeySystemInfo
}
