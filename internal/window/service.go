package window

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"snaptile/internal/model"
	"snaptile/internal/platform"
)

// processPlaceholderPrefix is used when the owning process of a window
// cannot be resolved by PID. The placeholder still allows exact PID
// matching on restore within the same session.
const processPlaceholderPrefix = "Process_"

// monitorMargin offsets a window from the target monitor's working-area
// origin when moving it between monitors.
const monitorMargin = 16

const defaultDpi = 96

// Service is the window capture/restore engine. Per-window failures are
// absorbed with defaults or skips; only enumeration-level platform errors
// propagate to callers.
type Service struct {
	api      platform.WindowAPI
	resolver *MonitorResolver

	// procName resolves a process name by PID. Injectable for tests;
	// defaults to reading /proc/<pid>/comm.
	procName func(pid int) (string, error)
}

func NewService(api platform.WindowAPI) *Service {
	return &Service{
		api:      api,
		resolver: NewMonitorResolver(),
		procName: procNameFromProc,
	}
}

// CaptureDesktopLayout snapshots every visible window. Windows whose
// title, class or rect cannot be resolved are skipped with a log line;
// process/state/monitor lookups fall back to defaults instead.
func (s *Service) CaptureDesktopLayout(ctx context.Context) ([]model.WindowInfo, error) {
	handles, err := s.api.AllWindows()
	if err != nil {
		return nil, &model.OperationError{Operation: "enumerate windows", Err: err}
	}

	monitors := s.monitorsByHandle()

	var windows []model.WindowInfo
	for _, h := range handles {
		if !s.api.IsWindow(h) || !s.api.IsWindowVisible(h) {
			continue
		}

		title, err := s.api.WindowText(h)
		if err != nil {
			log.Printf("capture: skipping window %d: title lookup failed: %v", h, err)
			continue
		}
		class, err := s.api.WindowClassName(h)
		if err != nil {
			log.Printf("capture: skipping window %d: class lookup failed: %v", h, err)
			continue
		}
		rect, err := s.api.WindowRect(h)
		if err != nil {
			log.Printf("capture: skipping window %d: rect lookup failed: %v", h, err)
			continue
		}
		if rect.Width <= 0 || rect.Height <= 0 {
			log.Printf("capture: skipping window %d: zero-sized rect %dx%d", h, rect.Width, rect.Height)
			continue
		}

		// ZOrder counts captured windows only, so skipped windows leave
		// no gaps in the persisted stacking order.
		info := model.WindowInfo{
			ID:          model.NewID(),
			WindowID:    strconv.FormatUint(uint64(h), 10),
			WindowTitle: title,
			ClassName:   class,
			ProcessName: s.resolveProcessName(h),
			Position:    model.Point{X: rect.X, Y: rect.Y},
			Size:        model.Size{Width: rect.Width, Height: rect.Height},
			State:       s.resolveState(h),
			ZOrder:      len(windows),
			IsVisible:   true,
			SavedDpi:    defaultDpi,
		}

		if mh, err := s.api.WindowMonitor(h); err == nil {
			info.Monitor = s.resolver.IndexFor(mh)
			info.SavedMonitorHandle = uint32(mh)
			if desc, ok := monitors[mh]; ok && desc.Dpi > 0 {
				info.SavedDpi = desc.Dpi
			}
		}

		windows = append(windows, info)
	}
	return windows, nil
}

// RestoreWindows restores each entry and returns the number of successes.
// Partial success is normal, not an error.
func (s *Service) RestoreWindows(ctx context.Context, windows []model.WindowInfo) int {
	restored := 0
	for i := range windows {
		if s.RestoreWindow(ctx, windows[i]) {
			restored++
		}
	}
	return restored
}

// RestoreWindow re-resolves a live handle for the saved window and
// applies bounds first, then state, then visibility. State transitions
// such as maximize override bounds applied moments earlier, so this
// ordering is required to converge on the saved configuration. Returns
// false when no live match exists.
func (s *Service) RestoreWindow(ctx context.Context, info model.WindowInfo) bool {
	h := s.FindWindowByInfo(ctx, info)
	if h == 0 {
		return false
	}

	bounds := platform.Rect{
		X:      info.Position.X,
		Y:      info.Position.Y,
		Width:  info.Size.Width,
		Height: info.Size.Height,
	}
	if err := s.api.SetWindowBounds(h, bounds); err != nil {
		log.Printf("restore: set bounds for window %d failed: %v", h, err)
	}

	var err error
	switch info.State {
	case model.WindowStateMinimized:
		err = s.api.MinimizeWindow(h)
	case model.WindowStateMaximized:
		err = s.api.MaximizeWindow(h)
	default:
		err = s.api.RestoreWindow(h)
	}
	if err != nil {
		log.Printf("restore: set state %s for window %d failed: %v", info.State, h, err)
	}

	if info.IsVisible {
		err = s.api.ShowWindow(h)
	} else {
		err = s.api.HideWindow(h)
	}
	if err != nil {
		log.Printf("restore: set visibility for window %d failed: %v", h, err)
	}

	return true
}

// FindWindowByInfo resolves a saved window description to a live handle.
// The saved WindowID is a fast path only: when it no longer refers to a
// live window, the desktop is scanned and the first window matching every
// non-empty provided field wins. Absent fields are wildcards. A zero
// return is an expected outcome, not an error.
func (s *Service) FindWindowByInfo(ctx context.Context, info model.WindowInfo) platform.WindowHandle {
	if id, err := strconv.ParseUint(info.WindowID, 10, 32); err == nil {
		h := platform.WindowHandle(id)
		if h != 0 && s.api.IsWindow(h) {
			return h
		}
	}

	handles, err := s.api.AllWindows()
	if err != nil {
		log.Printf("find window: enumeration failed: %v", err)
		return 0
	}

	placeholderPid, hasPlaceholder := parseProcessPlaceholder(info.ProcessName)

	for _, h := range handles {
		if !s.api.IsWindow(h) {
			continue
		}

		if info.WindowTitle != "" {
			title, err := s.api.WindowText(h)
			if err != nil || !strings.Contains(strings.ToLower(title), strings.ToLower(info.WindowTitle)) {
				continue
			}
		}
		if info.ClassName != "" {
			class, err := s.api.WindowClassName(h)
			if err != nil || !strings.EqualFold(class, info.ClassName) {
				continue
			}
		}
		if info.ProcessName != "" {
			pid, err := s.api.WindowProcessID(h)
			if err != nil {
				continue
			}
			if hasPlaceholder {
				if pid != placeholderPid {
					continue
				}
			} else {
				name, err := s.procName(pid)
				if err != nil || !strings.EqualFold(name, info.ProcessName) {
					continue
				}
			}
		}
		return h
	}
	return 0
}

// GetMonitorConfiguration translates every platform monitor descriptor to
// a MonitorInfo with a session-stable index.
func (s *Service) GetMonitorConfiguration(ctx context.Context) ([]model.MonitorInfo, error) {
	descs, err := s.api.AllMonitors()
	if err != nil {
		return nil, &model.OperationError{Operation: "enumerate monitors", Err: err}
	}
	s.resolver.Seed(descs)

	monitors := make([]model.MonitorInfo, 0, len(descs))
	for _, d := range descs {
		monitors = append(monitors, model.MonitorInfo{
			Handle:      uint32(d.Handle),
			Index:       s.resolver.IndexFor(d.Handle),
			Name:        d.Name,
			IsPrimary:   d.IsPrimary,
			Bounds:      toModelRect(d.Bounds),
			WorkingArea: toModelRect(d.WorkingArea),
			Dpi:         d.Dpi,
			RefreshRate: d.RefreshRate,
		})
	}
	return monitors, nil
}

// GetPrimaryMonitor returns the monitor flagged primary, falling back to
// index 0 when none is flagged.
func (s *Service) GetPrimaryMonitor(ctx context.Context) (*model.MonitorInfo, error) {
	monitors, err := s.GetMonitorConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, &model.NotFoundError{Kind: "monitor", ID: "primary"}
	}
	for i := range monitors {
		if monitors[i].IsPrimary {
			return &monitors[i], nil
		}
	}
	for i := range monitors {
		if monitors[i].Index == 0 {
			return &monitors[i], nil
		}
	}
	return &monitors[0], nil
}

// GetMonitorByIndex returns the monitor with the given session index.
func (s *Service) GetMonitorByIndex(ctx context.Context, index int) (*model.MonitorInfo, error) {
	monitors, err := s.GetMonitorConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	for i := range monitors {
		if monitors[i].Index == index {
			return &monitors[i], nil
		}
	}
	return nil, &model.NotFoundError{Kind: "monitor", ID: strconv.Itoa(index)}
}

// MoveWindow repositions a window. Parse failures fail fast; platform
// failures are logged and absorbed.
func (s *Service) MoveWindow(ctx context.Context, windowID string, x, y int) error {
	h, err := parseHandle(windowID)
	if err != nil {
		return err
	}
	if err := s.api.MoveWindow(h, x, y); err != nil {
		log.Printf("move window %d: %v", h, err)
	}
	return nil
}

func (s *Service) ResizeWindow(ctx context.Context, windowID string, width, height int) error {
	h, err := parseHandle(windowID)
	if err != nil {
		return err
	}
	if err := s.api.ResizeWindow(h, width, height); err != nil {
		log.Printf("resize window %d: %v", h, err)
	}
	return nil
}

func (s *Service) SetWindowState(ctx context.Context, windowID string, state model.WindowState) error {
	h, err := parseHandle(windowID)
	if err != nil {
		return err
	}
	var opErr error
	switch state {
	case model.WindowStateMinimized:
		opErr = s.api.MinimizeWindow(h)
	case model.WindowStateMaximized:
		opErr = s.api.MaximizeWindow(h)
	case model.WindowStateNormal:
		opErr = s.api.RestoreWindow(h)
	default:
		return &model.ValidationError{Field: "state", Reason: fmt.Sprintf("unknown state %q", state)}
	}
	if opErr != nil {
		log.Printf("set state %s on window %d: %v", state, h, opErr)
	}
	return nil
}

func (s *Service) ShowWindow(ctx context.Context, windowID string) error {
	h, err := parseHandle(windowID)
	if err != nil {
		return err
	}
	if err := s.api.ShowWindow(h); err != nil {
		log.Printf("show window %d: %v", h, err)
	}
	return nil
}

func (s *Service) HideWindow(ctx context.Context, windowID string) error {
	h, err := parseHandle(windowID)
	if err != nil {
		return err
	}
	if err := s.api.HideWindow(h); err != nil {
		log.Printf("hide window %d: %v", h, err)
	}
	return nil
}

func (s *Service) BringWindowToFront(ctx context.Context, windowID string) error {
	h, err := parseHandle(windowID)
	if err != nil {
		return err
	}
	if err := s.api.BringWindowToFront(h); err != nil {
		log.Printf("raise window %d: %v", h, err)
	}
	return nil
}

// MoveWindowToMonitor anchors the window near the target monitor's
// working-area top-left and clamps its size to the working area, so a
// window saved on a large monitor never lands off-screen or oversized on
// a smaller one.
func (s *Service) MoveWindowToMonitor(ctx context.Context, windowID string, monitorIndex int) error {
	h, err := parseHandle(windowID)
	if err != nil {
		return err
	}
	monitor, err := s.GetMonitorByIndex(ctx, monitorIndex)
	if err != nil {
		return err
	}

	rect, err := s.api.WindowRect(h)
	if err != nil {
		log.Printf("move to monitor: rect lookup for window %d failed: %v", h, err)
		return nil
	}

	wa := monitor.WorkingArea
	width := rect.Width
	height := rect.Height
	if width > wa.Width {
		width = wa.Width
	}
	if height > wa.Height {
		height = wa.Height
	}

	bounds := platform.Rect{
		X:      wa.X + monitorMargin,
		Y:      wa.Y + monitorMargin,
		Width:  width,
		Height: height,
	}
	if err := s.api.SetWindowBounds(h, bounds); err != nil {
		log.Printf("move window %d to monitor %d: %v", h, monitorIndex, err)
	}
	return nil
}

func (s *Service) resolveState(h platform.WindowHandle) model.WindowState {
	switch {
	case s.api.IsWindowMinimized(h):
		return model.WindowStateMinimized
	case s.api.IsWindowMaximized(h):
		return model.WindowStateMaximized
	default:
		return model.WindowStateNormal
	}
}

func (s *Service) resolveProcessName(h platform.WindowHandle) string {
	pid, err := s.api.WindowProcessID(h)
	if err != nil {
		return ""
	}
	name, err := s.procName(pid)
	if err != nil || name == "" {
		// Process lookup can race process exit; keep the PID so exact
		// matching still works within the session.
		return fmt.Sprintf("%s%d", processPlaceholderPrefix, pid)
	}
	return name
}

func (s *Service) monitorsByHandle() map[platform.MonitorHandle]platform.MonitorDescriptor {
	out := make(map[platform.MonitorHandle]platform.MonitorDescriptor)
	descs, err := s.api.AllMonitors()
	if err != nil {
		log.Printf("capture: monitor enumeration failed: %v", err)
		return out
	}
	s.resolver.Seed(descs)
	for _, d := range descs {
		out[d.Handle] = d
	}
	return out
}

func parseHandle(windowID string) (platform.WindowHandle, error) {
	id, err := strconv.ParseUint(windowID, 10, 32)
	if err != nil || id == 0 {
		return 0, &model.ValidationError{Field: "windowId", Reason: fmt.Sprintf("not a window handle: %q", windowID)}
	}
	return platform.WindowHandle(id), nil
}

func parseProcessPlaceholder(name string) (int, bool) {
	if !strings.HasPrefix(name, processPlaceholderPrefix) {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimPrefix(name, processPlaceholderPrefix))
	if err != nil {
		return 0, false
	}
	return pid, true
}

func procNameFromProc(pid int) (string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func toModelRect(r platform.Rect) model.Rect {
	return model.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
