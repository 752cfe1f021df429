package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"

	"snaptile/internal/platform"
)

// AllMonitors enumerates active monitors via XRandR. The monitor handle
// is the CRTC id, stable for the session; DPI is derived from the
// output's physical size and refresh rate from the active mode timings.
func (b *WindowBackend) AllMonitors() ([]platform.MonitorDescriptor, error) {
	conn := b.conn.XUtil.Conn()

	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(conn, b.conn.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if primary, err := randr.GetOutputPrimary(conn, b.conn.Root).Reply(); err == nil {
		primaryOutput = primary.Output
	}

	modes := make(map[randr.Mode]randr.ModeInfo, len(resources.Modes))
	for _, m := range resources.Modes {
		modes[randr.Mode(m.Id)] = m
	}

	var monitors []platform.MonitorDescriptor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		bounds := platform.Rect{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}

		desc := platform.MonitorDescriptor{
			Handle:      platform.MonitorHandle(crtc),
			Index:       i,
			Name:        fmt.Sprintf("Monitor%d", i),
			Bounds:      bounds,
			WorkingArea: b.workingArea(bounds),
			Dpi:         96,
			RefreshRate: 60,
		}

		output := crtcInfo.Outputs[0]
		desc.IsPrimary = output == primaryOutput
		if outputInfo, err := randr.GetOutputInfo(conn, output, resources.ConfigTimestamp).Reply(); err == nil {
			desc.Name = string(outputInfo.Name)
			if outputInfo.MmWidth > 0 {
				desc.Dpi = clampDpi(int(float64(crtcInfo.Width) * 25.4 / float64(outputInfo.MmWidth)))
			}
		}
		if mode, ok := modes[crtcInfo.Mode]; ok && mode.Htotal > 0 && mode.Vtotal > 0 {
			desc.RefreshRate = clampRefresh(int(mode.DotClock) / (int(mode.Htotal) * int(mode.Vtotal)))
		}

		monitors = append(monitors, desc)
	}

	return monitors, nil
}

// workingArea intersects monitor bounds with the desktop work area
// (excludes panels and docks). Falls back to the raw bounds.
func (b *WindowBackend) workingArea(bounds platform.Rect) platform.Rect {
	workArea, err := ewmh.WorkareaGet(b.conn.XUtil)
	if err != nil || len(workArea) == 0 {
		return bounds
	}

	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(b.conn.XUtil); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]

	x1 := max(bounds.X, int(wa.X))
	y1 := max(bounds.Y, int(wa.Y))
	x2 := min(bounds.X+bounds.Width, int(wa.X)+int(wa.Width))
	y2 := min(bounds.Y+bounds.Height, int(wa.Y)+int(wa.Height))

	if x2 <= x1 || y2 <= y1 {
		return bounds
	}
	return platform.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func clampDpi(dpi int) int {
	if dpi < 72 {
		return 72
	}
	if dpi > 300 {
		return 300
	}
	return dpi
}

func clampRefresh(hz int) int {
	if hz < 30 {
		return 30
	}
	if hz > 360 {
		return 360
	}
	return hz
}
