package layout

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"snaptile/internal/model"
)

func TestExportImportLayout_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	src, err := svc.SaveCurrentLayout(ctx, "work", "main setup")
	require.NoError(t, err)
	require.NoError(t, svc.ActivateLayout(ctx, src.ID))

	path := filepath.Join(t.TempDir(), "work.json")
	require.NoError(t, svc.ExportLayout(ctx, src.ID, path))

	imported, err := svc.ImportLayout(ctx, path)
	require.NoError(t, err)

	// Fresh identity, fresh timestamps, never active on import.
	require.NotEqual(t, src.ID, imported.ID)
	require.False(t, imported.IsActive)
	require.Equal(t, src.Name, imported.Name)
	require.Equal(t, src.Description, imported.Description)

	require.Len(t, imported.Windows, len(src.Windows))
	for i := range imported.Windows {
		require.NotEqual(t, src.Windows[i].ID, imported.Windows[i].ID)
		require.Equal(t, src.Windows[i].WindowTitle, imported.Windows[i].WindowTitle)
		require.Equal(t, src.Windows[i].Position, imported.Windows[i].Position)
		require.Equal(t, src.Windows[i].Size, imported.Windows[i].Size)
		require.Equal(t, src.Windows[i].SavedDpi, imported.Windows[i].SavedDpi)
		require.Equal(t, src.Windows[i].SavedMonitorHandle, imported.Windows[i].SavedMonitorHandle)
	}
	require.Equal(t, src.MonitorConfiguration, imported.MonitorConfiguration)

	// Both layouts persist; the original stays active.
	all, err := svc.GetAllLayouts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	active, err := svc.GetActiveLayout(ctx)
	require.NoError(t, err)
	require.Equal(t, src.ID, active.ID)
}

func TestExportLayout_MissingLayout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	err := svc.ExportLayout(ctx, "missing", filepath.Join(t.TempDir(), "x.json"))
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestImportLayout_FileFailureKinds(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)
	dir := t.TempDir()

	_, err := svc.ImportLayout(ctx, filepath.Join(dir, "absent.json"))
	requireFileErrorKind(t, err, model.FileMissing)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = svc.ImportLayout(ctx, empty)
	requireFileErrorKind(t, err, model.FileEmpty)

	malformed := filepath.Join(dir, "malformed.json")
	require.NoError(t, os.WriteFile(malformed, []byte("{not json"), 0o644))
	_, err = svc.ImportLayout(ctx, malformed)
	requireFileErrorKind(t, err, model.FileMalformed)
}

func requireFileErrorKind(t *testing.T, err error, kind model.FileErrorKind) {
	t.Helper()
	var fileErr *model.FileOperationError
	require.True(t, errors.As(err, &fileErr), "expected FileOperationError, got %v", err)
	require.Equal(t, kind, fileErr.Kind)
}

func TestImportLayout_RebindsEmbeddedHotkey(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLayoutService(t)

	src, err := svc.SaveCurrentLayout(ctx, "work", "")
	require.NoError(t, err)
	src.Hotkey = &model.HotkeyInfo{
		ID:       model.NewID(),
		Keys:     "Ctrl+Shift+1",
		Action:   model.ActionRestoreLayout,
		LayoutID: src.ID,
	}
	require.NoError(t, svc.UpdateLayout(ctx, src))

	path := filepath.Join(t.TempDir(), "work.json")
	require.NoError(t, svc.ExportLayout(ctx, src.ID, path))

	imported, err := svc.ImportLayout(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, imported.Hotkey)
	require.NotEqual(t, src.Hotkey.ID, imported.Hotkey.ID)
	require.Equal(t, imported.ID, imported.Hotkey.LayoutID)
}
