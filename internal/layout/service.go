package layout

import (
	"context"
	"errors"
	"log"
	"time"

	"snaptile/internal/model"
	"snaptile/internal/store"
	"snaptile/internal/window"
)

// RestoreOptions tunes a layout restore.
type RestoreOptions struct {
	// SkipMinimized leaves windows that were saved minimized alone.
	SkipMinimized bool
	// MarkActive activates the layout after a successful restore.
	MarkActive bool
}

// Service is the layout lifecycle manager: CRUD and business rules over
// persisted layouts, built on the window engine and the layout repository.
type Service struct {
	windows *window.Service
	repo    *store.LayoutRepository
}

func NewService(windows *window.Service, repo *store.LayoutRepository) *Service {
	return &Service{windows: windows, repo: repo}
}

// SaveCurrentLayout captures the desktop and persists it as a new layout.
// Duplicate names are permitted; callers wanting uniqueness check first.
func (s *Service) SaveCurrentLayout(ctx context.Context, name, description string) (*model.LayoutProfile, error) {
	if name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "is required"}
	}

	windows, err := s.windows.CaptureDesktopLayout(ctx)
	if err != nil {
		return nil, err
	}
	monitors, err := s.windows.GetMonitorConfiguration(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	profile := &model.LayoutProfile{
		ID:                   model.NewID(),
		Name:                 name,
		Description:          description,
		CreatedAt:            now,
		UpdatedAt:            now,
		Windows:              windows,
		MonitorConfiguration: monitors,
	}
	if err := s.repo.Insert(ctx, profile); err != nil {
		return nil, &model.StorageError{Operation: "insert", Collection: "layouts", Err: err}
	}
	log.Printf("layout: saved %q with %d windows", name, len(windows))
	return profile, nil
}

// GetLayout returns the layout with the given id, or nil when absent.
func (s *Service) GetLayout(ctx context.Context, id string) (*model.LayoutProfile, error) {
	if id == "" {
		return nil, nil
	}
	layout, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &model.StorageError{Operation: "get", Collection: "layouts", Err: err}
	}
	return layout, nil
}

func (s *Service) GetAllLayouts(ctx context.Context) ([]model.LayoutProfile, error) {
	layouts, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, &model.StorageError{Operation: "list", Collection: "layouts", Err: err}
	}
	return layouts, nil
}

// GetLayoutsByName returns layouts whose name contains the substring,
// case-insensitively. An empty query returns nothing.
func (s *Service) GetLayoutsByName(ctx context.Context, name string) ([]model.LayoutProfile, error) {
	if name == "" {
		return nil, nil
	}
	layouts, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, &model.StorageError{Operation: "find", Collection: "layouts", Err: err}
	}
	return layouts, nil
}

// UpdateLayout stamps UpdatedAt and persists the layout as-is.
func (s *Service) UpdateLayout(ctx context.Context, layout *model.LayoutProfile) error {
	if layout == nil || layout.ID == "" {
		return &model.ValidationError{Field: "layout", Reason: "missing layout or id"}
	}
	layout.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, layout); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &model.NotFoundError{Kind: "layout", ID: layout.ID}
		}
		return &model.StorageError{Operation: "update", Collection: "layouts", Err: err}
	}
	return nil
}

// DeleteLayout removes a persisted layout.
func (s *Service) DeleteLayout(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &model.NotFoundError{Kind: "layout", ID: id}
		}
		return &model.StorageError{Operation: "delete", Collection: "layouts", Err: err}
	}
	return nil
}

// ActivateLayout makes the target the single active layout. The
// deactivate-all-activate-one sequence runs inside one repository
// transaction, so the at-most-one-active invariant holds even when the
// operation fails partway.
func (s *Service) ActivateLayout(ctx context.Context, id string) error {
	if err := s.repo.SetActiveExclusive(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &model.NotFoundError{Kind: "layout", ID: id}
		}
		return &model.StorageError{Operation: "activate", Collection: "layouts", Err: err}
	}
	return nil
}

// GetActiveLayout returns the currently active layout, or nil.
func (s *Service) GetActiveLayout(ctx context.Context) (*model.LayoutProfile, error) {
	layout, err := s.repo.GetActive(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &model.StorageError{Operation: "get active", Collection: "layouts", Err: err}
	}
	return layout, nil
}

// RestoreLayout replays a persisted layout onto the live desktop.
// Success means more than zero windows were restored; windows whose
// process has gone are expected losses, not failures.
func (s *Service) RestoreLayout(ctx context.Context, id string, opts *RestoreOptions) (bool, error) {
	layout, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, &model.NotFoundError{Kind: "layout", ID: id}
		}
		return false, &model.StorageError{Operation: "get", Collection: "layouts", Err: err}
	}

	windows := layout.Windows
	if opts != nil && opts.SkipMinimized {
		kept := windows[:0:0]
		for _, w := range windows {
			if w.State != model.WindowStateMinimized {
				kept = append(kept, w)
			}
		}
		windows = kept
	}

	restored := s.windows.RestoreWindows(ctx, windows)
	log.Printf("layout: restored %d/%d windows of %q", restored, len(windows), layout.Name)

	if restored > 0 && opts != nil && opts.MarkActive {
		if err := s.ActivateLayout(ctx, id); err != nil {
			log.Printf("layout: activate after restore failed: %v", err)
		}
	}
	return restored > 0, nil
}

// ValidateLayout checks a persisted layout for restorability. A missing
// layout or name is an error; zero windows is a warning.
func (s *Service) ValidateLayout(ctx context.Context, id string) (*model.LayoutValidation, error) {
	result := &model.LayoutValidation{LayoutID: id}

	layout, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		result.Errors = append(result.Errors, "layout not found")
		return result, nil
	}
	if err != nil {
		return nil, &model.StorageError{Operation: "get", Collection: "layouts", Err: err}
	}

	if layout.Name == "" {
		result.Errors = append(result.Errors, "layout has no name")
	}
	result.WindowCount = len(layout.Windows)
	if result.WindowCount == 0 {
		result.Warnings = append(result.Warnings, "layout contains no windows")
	}

	result.IsValid = len(result.Errors) == 0
	result.CanBeRestored = result.IsValid && result.WindowCount > 0
	return result, nil
}

// DuplicateLayout deep-copies a layout's windows and monitor
// configuration into a new, inactive layout under a new name.
func (s *Service) DuplicateLayout(ctx context.Context, id, newName string) (*model.LayoutProfile, error) {
	if newName == "" {
		return nil, &model.ValidationError{Field: "newName", Reason: "is required"}
	}
	src, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &model.NotFoundError{Kind: "layout", ID: id}
		}
		return nil, &model.StorageError{Operation: "get", Collection: "layouts", Err: err}
	}

	now := time.Now().UTC()
	dup := &model.LayoutProfile{
		ID:          model.NewID(),
		Name:        newName,
		Description: src.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	dup.Windows = make([]model.WindowInfo, len(src.Windows))
	for i, w := range src.Windows {
		w.ID = model.NewID()
		dup.Windows[i] = w
	}
	dup.MonitorConfiguration = append([]model.MonitorInfo(nil), src.MonitorConfiguration...)

	if err := s.repo.Insert(ctx, dup); err != nil {
		return nil, &model.StorageError{Operation: "insert", Collection: "layouts", Err: err}
	}
	return dup, nil
}
