package store

import (
	"context"
	"strings"

	"snaptile/internal/model"
)

const hotkeyCollection = "hotkeys"

// HotkeyRepository persists HotkeyInfo documents.
type HotkeyRepository struct {
	*Collection[model.HotkeyInfo]
}

func NewHotkeyRepository(ctx context.Context, s *Store) (*HotkeyRepository, error) {
	col, err := NewCollection(ctx, s, hotkeyCollection, func(h *model.HotkeyInfo) string { return h.ID })
	if err != nil {
		return nil, err
	}
	return &HotkeyRepository{Collection: col}, nil
}

// FindByKeys returns the persisted hotkey owning the given Keys string.
// Comparison is case-insensitive: Keys uniqueness is case-insensitive
// everywhere in the hotkey manager.
func (r *HotkeyRepository) FindByKeys(ctx context.Context, keys string) (*model.HotkeyInfo, error) {
	matches, err := r.Find(ctx, func(h *model.HotkeyInfo) bool {
		return strings.EqualFold(h.Keys, keys)
	})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return &matches[0], nil
}

// FindByLayout returns hotkeys bound to the given layout.
func (r *HotkeyRepository) FindByLayout(ctx context.Context, layoutID string) ([]model.HotkeyInfo, error) {
	return r.Find(ctx, func(h *model.HotkeyInfo) bool { return h.LayoutID == layoutID })
}
