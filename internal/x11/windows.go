package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"snaptile/internal/platform"
)

const (
	stateHidden        = "_NET_WM_STATE_HIDDEN"
	stateMaximizedHorz = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateMaximizedVert = "_NET_WM_STATE_MAXIMIZED_VERT"

	// ICCCM WM_CHANGE_STATE iconic state value.
	iconicState = 3

	// EWMH source indication for direct user actions.
	sourceIndication = 2
)

// WindowBackend implements platform.WindowAPI on top of X11 (EWMH/ICCCM).
type WindowBackend struct {
	conn *Connection
}

func NewWindowBackend(conn *Connection) *WindowBackend {
	return &WindowBackend{conn: conn}
}

// AllWindows returns the EWMH client list: every top-level window the
// window manager tracks, including iconified ones.
func (b *WindowBackend) AllWindows() ([]platform.WindowHandle, error) {
	clients, err := ewmh.ClientListGet(b.conn.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	handles := make([]platform.WindowHandle, 0, len(clients))
	for _, win := range clients {
		handles = append(handles, platform.WindowHandle(win))
	}
	return handles, nil
}

func (b *WindowBackend) IsWindow(h platform.WindowHandle) bool {
	_, err := xproto.GetWindowAttributes(b.conn.XUtil.Conn(), xproto.Window(h)).Reply()
	return err == nil
}

// IsWindowVisible treats mapped windows and iconified (hidden-state)
// windows as visible; only withdrawn or destroyed windows are not.
func (b *WindowBackend) IsWindowVisible(h platform.WindowHandle) bool {
	attrs, err := xproto.GetWindowAttributes(b.conn.XUtil.Conn(), xproto.Window(h)).Reply()
	if err != nil {
		return false
	}
	if attrs.MapState == xproto.MapStateViewable {
		return true
	}
	return b.hasState(h, stateHidden)
}

func (b *WindowBackend) IsWindowMinimized(h platform.WindowHandle) bool {
	return b.hasState(h, stateHidden)
}

func (b *WindowBackend) IsWindowMaximized(h platform.WindowHandle) bool {
	return b.hasState(h, stateMaximizedHorz) && b.hasState(h, stateMaximizedVert)
}

func (b *WindowBackend) WindowText(h platform.WindowHandle) (string, error) {
	name, err := ewmh.WmNameGet(b.conn.XUtil, xproto.Window(h))
	if err != nil || name == "" {
		// Older clients only set the ICCCM name.
		name, err = icccm.WmNameGet(b.conn.XUtil, xproto.Window(h))
		if err != nil {
			return "", fmt.Errorf("failed to get window name: %w", err)
		}
	}
	return name, nil
}

func (b *WindowBackend) WindowClassName(h platform.WindowHandle) (string, error) {
	class, err := icccm.WmClassGet(b.conn.XUtil, xproto.Window(h))
	if err != nil {
		return "", fmt.Errorf("failed to get window class: %w", err)
	}
	return class.Class, nil
}

func (b *WindowBackend) WindowRect(h platform.WindowHandle) (platform.Rect, error) {
	conn := b.conn.XUtil.Conn()
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(h)).Reply()
	if err != nil {
		return platform.Rect{}, fmt.Errorf("failed to get geometry: %w", err)
	}
	translate, err := xproto.TranslateCoordinates(conn, xproto.Window(h), b.conn.Root, 0, 0).Reply()
	if err != nil {
		return platform.Rect{}, fmt.Errorf("failed to translate coordinates: %w", err)
	}
	return platform.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

func (b *WindowBackend) WindowProcessID(h platform.WindowHandle) (int, error) {
	pid, err := ewmh.WmPidGet(b.conn.XUtil, xproto.Window(h))
	if err != nil {
		return 0, fmt.Errorf("failed to get window pid: %w", err)
	}
	return int(pid), nil
}

// WindowMonitor returns the handle of the monitor containing the window
// center.
func (b *WindowBackend) WindowMonitor(h platform.WindowHandle) (platform.MonitorHandle, error) {
	rect, err := b.WindowRect(h)
	if err != nil {
		return 0, err
	}
	monitors, err := b.AllMonitors()
	if err != nil {
		return 0, err
	}

	centerX := rect.X + rect.Width/2
	centerY := rect.Y + rect.Height/2
	for _, m := range monitors {
		if centerX >= m.Bounds.X && centerX < m.Bounds.X+m.Bounds.Width &&
			centerY >= m.Bounds.Y && centerY < m.Bounds.Y+m.Bounds.Height {
			return m.Handle, nil
		}
	}
	return 0, fmt.Errorf("no monitor contains window %d", h)
}

func (b *WindowBackend) MoveWindow(h platform.WindowHandle, x, y int) error {
	rect, err := b.WindowRect(h)
	if err != nil {
		return err
	}
	return b.SetWindowBounds(h, platform.Rect{X: x, Y: y, Width: rect.Width, Height: rect.Height})
}

func (b *WindowBackend) ResizeWindow(h platform.WindowHandle, width, height int) error {
	rect, err := b.WindowRect(h)
	if err != nil {
		return err
	}
	return b.SetWindowBounds(h, platform.Rect{X: rect.X, Y: rect.Y, Width: width, Height: height})
}

// SetWindowBounds moves and resizes in one request. A maximized window is
// unmaximized first; the window manager would ignore the geometry change
// otherwise. Uses EWMH MoveResize for WM compatibility with a direct
// configure as fallback.
func (b *WindowBackend) SetWindowBounds(h platform.WindowHandle, bounds platform.Rect) error {
	win := xproto.Window(h)
	b.unmaximize(win)

	err := ewmh.MoveresizeWindow(b.conn.XUtil, win, bounds.X, bounds.Y, bounds.Width, bounds.Height)
	if err != nil {
		xwindow.New(b.conn.XUtil, win).MoveResize(bounds.X, bounds.Y, bounds.Width, bounds.Height)
	}
	return nil
}

// MinimizeWindow iconifies via an ICCCM WM_CHANGE_STATE client message.
func (b *WindowBackend) MinimizeWindow(h platform.WindowHandle) error {
	return b.sendClientMessage(xproto.Window(h), "WM_CHANGE_STATE", [5]uint32{iconicState})
}

func (b *WindowBackend) MaximizeWindow(h platform.WindowHandle) error {
	win := xproto.Window(h)
	if err := ewmh.WmStateReq(b.conn.XUtil, win, ewmh.StateAdd, stateMaximizedHorz); err != nil {
		return err
	}
	return ewmh.WmStateReq(b.conn.XUtil, win, ewmh.StateAdd, stateMaximizedVert)
}

// RestoreWindow returns a window to the normal state: de-iconify and
// remove maximization.
func (b *WindowBackend) RestoreWindow(h platform.WindowHandle) error {
	win := xproto.Window(h)
	if err := xproto.MapWindowChecked(b.conn.XUtil.Conn(), win).Check(); err != nil {
		return err
	}
	b.unmaximize(win)
	return nil
}

func (b *WindowBackend) ShowWindow(h platform.WindowHandle) error {
	return xproto.MapWindowChecked(b.conn.XUtil.Conn(), xproto.Window(h)).Check()
}

func (b *WindowBackend) HideWindow(h platform.WindowHandle) error {
	return xproto.UnmapWindowChecked(b.conn.XUtil.Conn(), xproto.Window(h)).Check()
}

// BringWindowToFront activates and raises via _NET_ACTIVE_WINDOW.
func (b *WindowBackend) BringWindowToFront(h platform.WindowHandle) error {
	return b.sendClientMessage(xproto.Window(h), "_NET_ACTIVE_WINDOW", [5]uint32{sourceIndication})
}

func (b *WindowBackend) hasState(h platform.WindowHandle, state string) bool {
	states, err := ewmh.WmStateGet(b.conn.XUtil, xproto.Window(h))
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func (b *WindowBackend) unmaximize(win xproto.Window) {
	if b.hasState(platform.WindowHandle(win), stateMaximizedHorz) {
		ewmh.WmStateReq(b.conn.XUtil, win, ewmh.StateRemove, stateMaximizedHorz)
	}
	if b.hasState(platform.WindowHandle(win), stateMaximizedVert) {
		ewmh.WmStateReq(b.conn.XUtil, win, ewmh.StateRemove, stateMaximizedVert)
	}
}

// sendClientMessage builds EWMH/ICCCM client messages manually; some
// xgbutil helpers panic on this library version (uint vs int assertion).
func (b *WindowBackend) sendClientMessage(win xproto.Window, atomName string, data [5]uint32) error {
	conn := b.conn.XUtil.Conn()
	atomReply, err := xproto.InternAtom(conn, false, uint16(len(atomName)), atomName).Reply()
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomName, err)
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}

	return xproto.SendEventChecked(
		conn,
		false,
		b.conn.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
