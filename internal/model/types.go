package model

import (
	"time"

	"github.com/google/uuid"
)

// WindowState describes the visual state of a top-level window.
type WindowState string

const (
	WindowStateNormal    WindowState = "normal"
	WindowStateMinimized WindowState = "minimized"
	WindowStateMaximized WindowState = "maximized"
)

// HotkeyAction names the operation a hotkey triggers.
type HotkeyAction string

const (
	ActionSaveLayout    HotkeyAction = "save_layout"
	ActionRestoreLayout HotkeyAction = "restore_layout"
	ActionCustom        HotkeyAction = "custom"
)

// Rect is a rectangle in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a position in screen coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowInfo is a snapshot of one window at capture time. WindowID is a
// session-scoped hint only; on restore it is never trusted and a live
// handle is re-resolved by attribute matching.
type WindowInfo struct {
	ID                 string      `json:"id"`
	WindowID           string      `json:"windowId"`
	ProcessName        string      `json:"processName"`
	WindowTitle        string      `json:"windowTitle"`
	ClassName          string      `json:"className"`
	Position           Point       `json:"position"`
	Size               Size        `json:"size"`
	State              WindowState `json:"state"`
	Monitor            int         `json:"monitor"`
	ZOrder             int         `json:"zOrder"`
	IsVisible          bool        `json:"isVisible"`
	SavedDpi           int         `json:"savedDpi"`
	SavedMonitorHandle uint32      `json:"savedMonitorHandle"`
}

// MonitorInfo describes one physical monitor. Recomputed on every query;
// the Index is session-stable but not stable across monitor reconfiguration.
type MonitorInfo struct {
	Handle      uint32 `json:"handle"`
	Index       int    `json:"index"`
	Name        string `json:"name"`
	IsPrimary   bool   `json:"isPrimary"`
	Bounds      Rect   `json:"bounds"`
	WorkingArea Rect   `json:"workingArea"`
	Dpi         int    `json:"dpi"`
	RefreshRate int    `json:"refreshRate"`
}

// LayoutProfile is a named, persisted snapshot of the desktop.
type LayoutProfile struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Description          string        `json:"description"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
	IsActive             bool          `json:"isActive"`
	Windows              []WindowInfo  `json:"windows"`
	MonitorConfiguration []MonitorInfo `json:"monitorConfiguration"`
	Hotkey               *HotkeyInfo   `json:"hotkey,omitempty"`
}

// HotkeyInfo is a persisted logical hotkey. Keys is the canonical
// modifier+key string and the uniqueness key; the platform registration
// ID is process-local and never stored here.
type HotkeyInfo struct {
	ID         string       `json:"id"`
	Keys       string       `json:"keys"`
	Modifiers  []string     `json:"modifiers"`
	Key        string       `json:"key"`
	IsEnabled  bool         `json:"isEnabled"`
	Action     HotkeyAction `json:"action"`
	LayoutID   string       `json:"layoutId,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	LastUsedAt time.Time    `json:"lastUsedAt,omitempty"`
	UseCount   int          `json:"useCount"`
}

// HotkeyConflict reports a group of persisted hotkeys sharing one Keys value.
type HotkeyConflict struct {
	Keys       string       `json:"keys"`
	Hotkeys    []HotkeyInfo `json:"hotkeys"`
	DetectedAt time.Time    `json:"detectedAt"`
}

// LayoutValidation is the result of checking a persisted layout.
type LayoutValidation struct {
	LayoutID      string   `json:"layoutId"`
	IsValid       bool     `json:"isValid"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	WindowCount   int      `json:"windowCount"`
	CanBeRestored bool     `json:"canBeRestored"`
}

// WindowStatistics summarizes the live desktop at query time.
type WindowStatistics struct {
	TotalWindows     int            `json:"totalWindows"`
	VisibleWindows   int            `json:"visibleWindows"`
	MinimizedWindows int            `json:"minimizedWindows"`
	MaximizedWindows int            `json:"maximizedWindows"`
	ByProcess        map[string]int `json:"byProcess"`
	ByMonitor        map[int]int    `json:"byMonitor"`
}

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}
