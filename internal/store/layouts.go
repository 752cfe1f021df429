package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"snaptile/internal/model"
)

const layoutCollection = "layouts"

// LayoutRepository persists LayoutProfile documents and enforces the
// at-most-one-active invariant at the persistence boundary.
type LayoutRepository struct {
	*Collection[model.LayoutProfile]
	store *Store
}

func NewLayoutRepository(ctx context.Context, s *Store) (*LayoutRepository, error) {
	col, err := NewCollection(ctx, s, layoutCollection, func(l *model.LayoutProfile) string { return l.ID })
	if err != nil {
		return nil, err
	}
	return &LayoutRepository{Collection: col, store: s}, nil
}

// FindByName returns layouts whose name contains the given substring,
// case-insensitively.
func (r *LayoutRepository) FindByName(ctx context.Context, name string) ([]model.LayoutProfile, error) {
	needle := strings.ToLower(name)
	return r.Find(ctx, func(l *model.LayoutProfile) bool {
		return strings.Contains(strings.ToLower(l.Name), needle)
	})
}

// GetActive returns the currently active layout, or ErrNotFound.
func (r *LayoutRepository) GetActive(ctx context.Context) (*model.LayoutProfile, error) {
	matches, err := r.Find(ctx, func(l *model.LayoutProfile) bool { return l.IsActive })
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return &matches[0], nil
}

// SetActiveExclusive deactivates every layout and activates the target in
// a single transaction. Deactivate-all plus activate-one must not be
// observable as separate steps: a failure anywhere rolls the whole
// sequence back, so there is never zero or more than one active layout.
func (r *LayoutRepository) SetActiveExclusive(ctx context.Context, id string) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id, data FROM layouts`)
	if err != nil {
		return fmt.Errorf("scan layouts: %w", err)
	}

	type rec struct {
		id   string
		data string
	}
	var recs []rec
	found := false
	for rows.Next() {
		var rc rec
		if err := rows.Scan(&rc.id, &rc.data); err != nil {
			rows.Close()
			return fmt.Errorf("scan layout row: %w", err)
		}
		if rc.id == id {
			found = true
		}
		recs = append(recs, rc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if !found {
		return ErrNotFound
	}

	now := time.Now().UTC()
	for _, rc := range recs {
		var layout model.LayoutProfile
		if err := json.Unmarshal([]byte(rc.data), &layout); err != nil {
			return fmt.Errorf("decode layout %s: %w", rc.id, err)
		}
		want := rc.id == id
		if layout.IsActive == want {
			continue
		}
		layout.IsActive = want
		layout.UpdatedAt = now
		data, err := json.Marshal(&layout)
		if err != nil {
			return fmt.Errorf("encode layout %s: %w", rc.id, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE layouts SET data = ? WHERE id = ?`, string(data), rc.id); err != nil {
			return fmt.Errorf("update layout %s: %w", rc.id, err)
		}
	}

	return tx.Commit()
}
