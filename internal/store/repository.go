package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Repository is the generic async CRUD surface consumed by the services.
type Repository[T any] interface {
	GetByID(ctx context.Context, id string) (*T, error)
	GetAll(ctx context.Context) ([]T, error)
	Find(ctx context.Context, pred func(*T) bool) ([]T, error)
	Insert(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

var collectionNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Collection is a sqlite-backed document collection: one table per
// collection, entities stored as JSON keyed by their entity ID.
type Collection[T any] struct {
	store *Store
	name  string
	id    func(*T) string
}

// NewCollection ensures the backing table exists and returns the collection.
// The id function extracts the primary key from an entity.
func NewCollection[T any](ctx context.Context, s *Store, name string, id func(*T) string) (*Collection[T], error) {
	if !collectionNameRe.MatchString(name) {
		return nil, fmt.Errorf("invalid collection name %q", name)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, data TEXT NOT NULL)`, name)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create collection %s: %w", name, err)
	}
	return &Collection[T]{store: s, name: name, id: id}, nil
}

func (c *Collection[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var data string
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, c.name)
	err := c.store.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", c.name, id, err)
	}
	entity := new(T)
	if err := json.Unmarshal([]byte(data), entity); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return entity, nil
}

func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT data FROM %s ORDER BY id`, c.name)
	rows, err := c.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.name, err)
		}
		var entity T
		if err := json.Unmarshal([]byte(data), &entity); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		out = append(out, entity)
	}
	return out, rows.Err()
}

func (c *Collection[T]) Find(ctx context.Context, pred func(*T) bool) ([]T, error) {
	all, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []T
	for i := range all {
		if pred(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (c *Collection[T]) Insert(ctx context.Context, entity *T) error {
	id := c.id(entity)
	if id == "" {
		return fmt.Errorf("insert %s: entity has no id", c.name)
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.name, id, err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, data) VALUES (?, ?)`, c.name)
	if _, err := c.store.db.ExecContext(ctx, query, id, string(data)); err != nil {
		if isUniqueErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert %s/%s: %w", c.name, id, err)
	}
	return nil
}

func isUniqueErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}

func (c *Collection[T]) Update(ctx context.Context, entity *T) error {
	id := c.id(entity)
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.name, id, err)
	}
	query := fmt.Sprintf(`UPDATE %s SET data = ? WHERE id = ?`, c.name)
	res, err := c.store.db.ExecContext(ctx, query, string(data), id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c.name, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, c.name)
	res, err := c.store.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.name, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, c.name)
	if err := c.store.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.name, err)
	}
	return n, nil
}
