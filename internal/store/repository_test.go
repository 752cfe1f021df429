package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"snaptile/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCollection_CRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	repo, err := NewLayoutRepository(ctx, st)
	require.NoError(t, err)

	layout := &model.LayoutProfile{ID: model.NewID(), Name: "work"}
	require.NoError(t, repo.Insert(ctx, layout))

	got, err := repo.GetByID(ctx, layout.ID)
	require.NoError(t, err)
	require.Equal(t, "work", got.Name)

	got.Name = "renamed"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, layout.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Name)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, layout.ID))
	_, err = repo.GetByID(ctx, layout.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCollection_UpdateAndDeleteMissingRows(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	repo, err := NewLayoutRepository(ctx, st)
	require.NoError(t, err)

	require.ErrorIs(t, repo.Update(ctx, &model.LayoutProfile{ID: "missing"}), ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)
}

func TestCollection_InsertRequiresID(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	repo, err := NewLayoutRepository(ctx, st)
	require.NoError(t, err)
	require.Error(t, repo.Insert(ctx, &model.LayoutProfile{Name: "no id"}))
}

func TestCollection_DuplicateInsertFails(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	repo, err := NewLayoutRepository(ctx, st)
	require.NoError(t, err)

	layout := &model.LayoutProfile{ID: model.NewID(), Name: "work"}
	require.NoError(t, repo.Insert(ctx, layout))
	require.ErrorIs(t, repo.Insert(ctx, layout), ErrDuplicate)
}

func TestSetActiveExclusive_SingleActiveSurvivesSwitches(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	repo, err := NewLayoutRepository(ctx, st)
	require.NoError(t, err)

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		l := &model.LayoutProfile{ID: model.NewID(), Name: name}
		require.NoError(t, repo.Insert(ctx, l))
		ids = append(ids, l.ID)
	}

	for _, id := range ids {
		require.NoError(t, repo.SetActiveExclusive(ctx, id))

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		active := 0
		for _, l := range all {
			if l.IsActive {
				active++
				require.Equal(t, id, l.ID)
			}
		}
		require.Equal(t, 1, active)
	}

	require.ErrorIs(t, repo.SetActiveExclusive(ctx, "missing"), ErrNotFound)

	// A failed activation must not have deactivated the current layout.
	current, err := repo.GetActive(ctx)
	require.NoError(t, err)
	require.Equal(t, ids[len(ids)-1], current.ID)
}

func TestHotkeyRepository_FindByKeysIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	repo, err := NewHotkeyRepository(ctx, st)
	require.NoError(t, err)

	hk := &model.HotkeyInfo{ID: model.NewID(), Keys: "Ctrl+Shift+S"}
	require.NoError(t, repo.Insert(ctx, hk))

	got, err := repo.FindByKeys(ctx, "CTRL+SHIFT+s")
	require.NoError(t, err)
	require.Equal(t, hk.ID, got.ID)

	_, err = repo.FindByKeys(ctx, "Ctrl+Shift+R")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHotkeyRepository_FindByLayout(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	repo, err := NewHotkeyRepository(ctx, st)
	require.NoError(t, err)

	a := &model.HotkeyInfo{ID: model.NewID(), Keys: "Ctrl+1", LayoutID: "L1"}
	b := &model.HotkeyInfo{ID: model.NewID(), Keys: "Ctrl+2", LayoutID: "L2"}
	require.NoError(t, repo.Insert(ctx, a))
	require.NoError(t, repo.Insert(ctx, b))

	got, err := repo.FindByLayout(ctx, "L1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, a.ID, got[0].ID)
}
