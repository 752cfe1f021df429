package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"snaptile/internal/model"
	"snaptile/internal/store"
)

// ExportLayout writes the full layout tree as pretty-printed camelCase
// JSON. The round trip preserves every window and monitor field,
// including SavedDpi and SavedMonitorHandle.
func (s *Service) ExportLayout(ctx context.Context, id, path string) error {
	layout, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &model.NotFoundError{Kind: "layout", ID: id}
		}
		return &model.StorageError{Operation: "get", Collection: "layouts", Err: err}
	}

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return &model.OperationError{Operation: "encode layout", Err: err}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return &model.FileOperationError{Path: path, Kind: model.FileMissing, Err: err}
	}
	return nil
}

// ImportLayout reads an exported layout file and persists it as a new,
// inactive layout. The imported tree gets a fresh layout identity, fresh
// timestamps and fresh identities for every contained window (and bound
// hotkey), so it can never collide with existing persisted entities.
// Missing file, empty content and malformed JSON are distinct failures.
func (s *Service) ImportLayout(ctx context.Context, path string) (*model.LayoutProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.FileOperationError{Path: path, Kind: model.FileMissing, Err: err}
	}
	if len(data) == 0 {
		return nil, &model.FileOperationError{Path: path, Kind: model.FileEmpty, Err: fmt.Errorf("file is empty")}
	}

	var layout model.LayoutProfile
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, &model.FileOperationError{Path: path, Kind: model.FileMalformed, Err: err}
	}

	now := time.Now().UTC()
	layout.ID = model.NewID()
	layout.CreatedAt = now
	layout.UpdatedAt = now
	layout.IsActive = false
	for i := range layout.Windows {
		layout.Windows[i].ID = model.NewID()
	}
	if layout.Hotkey != nil {
		layout.Hotkey.ID = model.NewID()
		layout.Hotkey.LayoutID = layout.ID
	}

	if err := s.repo.Insert(ctx, &layout); err != nil {
		return nil, &model.StorageError{Operation: "insert", Collection: "layouts", Err: err}
	}
	return &layout, nil
}
