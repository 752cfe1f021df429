package layout

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"snaptile/internal/model"
	"snaptile/internal/platform"
	"snaptile/internal/store"
	"snaptile/internal/window"
)

// stubDesktop is a minimal platform.WindowAPI with two fixed windows on
// one monitor, enough to exercise capture and restore paths.
type stubDesktop struct {
	handles []platform.WindowHandle
	gone    map[platform.WindowHandle]bool
	ops     []string
}

func newStubDesktop() *stubDesktop {
	return &stubDesktop{
		handles: []platform.WindowHandle{101, 102},
		gone:    make(map[platform.WindowHandle]bool),
	}
}

func (s *stubDesktop) AllWindows() ([]platform.WindowHandle, error) {
	var out []platform.WindowHandle
	for _, h := range s.handles {
		if !s.gone[h] {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *stubDesktop) IsWindow(h platform.WindowHandle) bool {
	return !s.gone[h] && (h == 101 || h == 102)
}
func (s *stubDesktop) IsWindowVisible(h platform.WindowHandle) bool { return s.IsWindow(h) }
func (s *stubDesktop) IsWindowMinimized(h platform.WindowHandle) bool {
	return h == 102
}
func (s *stubDesktop) IsWindowMaximized(platform.WindowHandle) bool { return false }

func (s *stubDesktop) WindowText(h platform.WindowHandle) (string, error) {
	if h == 101 {
		return "Browser", nil
	}
	return "Notes", nil
}

func (s *stubDesktop) WindowClassName(h platform.WindowHandle) (string, error) {
	if h == 101 {
		return "Firefox", nil
	}
	return "Editor", nil
}

func (s *stubDesktop) WindowRect(h platform.WindowHandle) (platform.Rect, error) {
	if s.gone[h] {
		return platform.Rect{}, errors.New("no such window")
	}
	return platform.Rect{X: 10, Y: 20, Width: 640, Height: 480}, nil
}

func (s *stubDesktop) WindowProcessID(platform.WindowHandle) (int, error) { return 42, nil }
func (s *stubDesktop) WindowMonitor(platform.WindowHandle) (platform.MonitorHandle, error) {
	return 1, nil
}

func (s *stubDesktop) MoveWindow(platform.WindowHandle, int, int) error   { return nil }
func (s *stubDesktop) ResizeWindow(platform.WindowHandle, int, int) error { return nil }
func (s *stubDesktop) SetWindowBounds(h platform.WindowHandle, _ platform.Rect) error {
	s.ops = append(s.ops, "bounds")
	return nil
}
func (s *stubDesktop) MinimizeWindow(platform.WindowHandle) error {
	s.ops = append(s.ops, "minimize")
	return nil
}
func (s *stubDesktop) MaximizeWindow(platform.WindowHandle) error {
	s.ops = append(s.ops, "maximize")
	return nil
}
func (s *stubDesktop) RestoreWindow(platform.WindowHandle) error {
	s.ops = append(s.ops, "restore")
	return nil
}
func (s *stubDesktop) ShowWindow(platform.WindowHandle) error {
	s.ops = append(s.ops, "show")
	return nil
}
func (s *stubDesktop) HideWindow(platform.WindowHandle) error {
	s.ops = append(s.ops, "hide")
	return nil
}
func (s *stubDesktop) BringWindowToFront(platform.WindowHandle) error { return nil }

func (s *stubDesktop) AllMonitors() ([]platform.MonitorDescriptor, error) {
	return []platform.MonitorDescriptor{
		{
			Handle:      1,
			Index:       0,
			Name:        "primary",
			IsPrimary:   true,
			Bounds:      platform.Rect{Width: 1920, Height: 1080},
			WorkingArea: platform.Rect{Y: 30, Width: 1920, Height: 1050},
			Dpi:         96,
			RefreshRate: 60,
		},
	}, nil
}

func newTestLayoutService(t *testing.T) (*Service, *stubDesktop) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "layouts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	repo, err := store.NewLayoutRepository(ctx, st)
	require.NoError(t, err)

	desktop := newStubDesktop()
	return NewService(window.NewService(desktop), repo), desktop
}

func TestSaveCurrentLayout_CapturesWindowsAndMonitors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	profile, err := svc.SaveCurrentLayout(ctx, "work", "main setup")
	require.NoError(t, err)
	require.NotEmpty(t, profile.ID)
	require.Equal(t, "work", profile.Name)
	require.Len(t, profile.Windows, 2)
	require.Len(t, profile.MonitorConfiguration, 1)
	require.False(t, profile.IsActive)

	_, err = svc.SaveCurrentLayout(ctx, "", "")
	require.ErrorIs(t, err, model.ErrValidation)

	// Round trip through storage.
	loaded, err := svc.GetLayout(ctx, profile.ID)
	require.NoError(t, err)
	require.Equal(t, profile.Windows, loaded.Windows)
}

func TestGetLayout_AbsentIsNilNotError(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	got, err := svc.GetLayout(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = svc.GetLayout(ctx, "")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGetLayoutsByName_CaseInsensitiveSubstring(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	_, err := svc.SaveCurrentLayout(ctx, "Work Desk", "")
	require.NoError(t, err)
	_, err = svc.SaveCurrentLayout(ctx, "gaming", "")
	require.NoError(t, err)

	matches, err := svc.GetLayoutsByName(ctx, "work")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "Work Desk", matches[0].Name)

	matches, err = svc.GetLayoutsByName(ctx, "")
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestActivateLayout_IsExclusive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	a, err := svc.SaveCurrentLayout(ctx, "a", "")
	require.NoError(t, err)
	b, err := svc.SaveCurrentLayout(ctx, "b", "")
	require.NoError(t, err)

	require.NoError(t, svc.ActivateLayout(ctx, a.ID))
	active, err := svc.GetActiveLayout(ctx)
	require.NoError(t, err)
	require.Equal(t, a.ID, active.ID)

	require.NoError(t, svc.ActivateLayout(ctx, b.ID))
	all, err := svc.GetAllLayouts(ctx)
	require.NoError(t, err)

	activeCount := 0
	for _, l := range all {
		if l.IsActive {
			activeCount++
			require.Equal(t, b.ID, l.ID)
		}
	}
	require.Equal(t, 1, activeCount)

	require.ErrorIs(t, svc.ActivateLayout(ctx, "missing"), model.ErrNotFound)
}

func TestDeleteLayout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	a, err := svc.SaveCurrentLayout(ctx, "a", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLayout(ctx, a.ID))
	got, err := svc.GetLayout(ctx, a.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	require.ErrorIs(t, svc.DeleteLayout(ctx, a.ID), model.ErrNotFound)
}

func TestRestoreLayout_SkipMinimized(t *testing.T) {
	ctx := context.Background()
	svc, desktop := newTestLayoutService(t)

	profile, err := svc.SaveCurrentLayout(ctx, "work", "")
	require.NoError(t, err)

	desktop.ops = nil
	restored, err := svc.RestoreLayout(ctx, profile.ID, &RestoreOptions{SkipMinimized: true})
	require.NoError(t, err)
	require.True(t, restored)

	// Window 102 was captured minimized and must not have been touched.
	for _, op := range desktop.ops {
		require.NotEqual(t, "minimize", op)
	}
}

func TestRestoreLayout_MarkActive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	profile, err := svc.SaveCurrentLayout(ctx, "work", "")
	require.NoError(t, err)

	restored, err := svc.RestoreLayout(ctx, profile.ID, &RestoreOptions{MarkActive: true})
	require.NoError(t, err)
	require.True(t, restored)

	active, err := svc.GetActiveLayout(ctx)
	require.NoError(t, err)
	require.Equal(t, profile.ID, active.ID)
}

func TestRestoreLayout_AllWindowsGoneIsFalseNotError(t *testing.T) {
	ctx := context.Background()
	svc, desktop := newTestLayoutService(t)

	profile, err := svc.SaveCurrentLayout(ctx, "work", "")
	require.NoError(t, err)

	desktop.gone[101] = true
	desktop.gone[102] = true

	restored, err := svc.RestoreLayout(ctx, profile.ID, nil)
	require.NoError(t, err)
	require.False(t, restored)

	_, err = svc.RestoreLayout(ctx, "missing", nil)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestValidateLayout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	profile, err := svc.SaveCurrentLayout(ctx, "work", "")
	require.NoError(t, err)

	v, err := svc.ValidateLayout(ctx, profile.ID)
	require.NoError(t, err)
	require.True(t, v.IsValid)
	require.True(t, v.CanBeRestored)
	require.Equal(t, 2, v.WindowCount)

	// A missing layout validates as invalid, not as an error.
	v, err = svc.ValidateLayout(ctx, "missing")
	require.NoError(t, err)
	require.False(t, v.IsValid)
	require.False(t, v.CanBeRestored)
	require.NotEmpty(t, v.Errors)
}

func TestValidateLayout_EmptyLayoutWarns(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	profile, err := svc.SaveCurrentLayout(ctx, "work", "")
	require.NoError(t, err)
	profile.Windows = nil
	require.NoError(t, svc.UpdateLayout(ctx, profile))

	v, err := svc.ValidateLayout(ctx, profile.ID)
	require.NoError(t, err)
	require.True(t, v.IsValid)
	require.False(t, v.CanBeRestored)
	require.NotEmpty(t, v.Warnings)
}

func TestDuplicateLayout_FreshIdentitiesInactiveCopy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	src, err := svc.SaveCurrentLayout(ctx, "work", "desc")
	require.NoError(t, err)
	require.NoError(t, svc.ActivateLayout(ctx, src.ID))

	dup, err := svc.DuplicateLayout(ctx, src.ID, "work copy")
	require.NoError(t, err)
	require.NotEqual(t, src.ID, dup.ID)
	require.Equal(t, "work copy", dup.Name)
	require.Equal(t, "desc", dup.Description)
	require.False(t, dup.IsActive)
	require.Len(t, dup.Windows, len(src.Windows))
	for i := range dup.Windows {
		require.NotEqual(t, src.Windows[i].ID, dup.Windows[i].ID)
		require.Equal(t, src.Windows[i].WindowTitle, dup.Windows[i].WindowTitle)
	}

	_, err = svc.DuplicateLayout(ctx, src.ID, "")
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.DuplicateLayout(ctx, "missing", "x")
	require.ErrorIs(t, err, model.ErrNotFound)
}
