package category

import (
	"context"
	"database/sql"
	"sort"
	"sync"
)

// Repository provides access to category rows.
type Repository interface {
	List(ctx context.Context, limit int) ([]CategoryItem, error)
}

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns category rows ordered by name.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]CategoryItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, image FROM category ORDER BY name, id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CategoryItem, 0)
	for rows.Next() {
		var (
			item CategoryItem
			desc sql.NullString
			img  sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Name, &desc, &img); err != nil {
			return nil, err
		}
		item.Description = desc.String
		if img.Valid && img.String != "" {
			item.Image = &img.String
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	items []CategoryItem
}

func NewInMemoryRepository(seed []CategoryItem) *InMemoryRepository {
	items := append([]CategoryItem(nil), seed...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return &InMemoryRepository{items: items}
}

func (r *InMemoryRepository) List(ctx context.Context, limit int) ([]CategoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit > len(r.items) {
		limit = len(r.items)
	}
	out := make([]CategoryItem, limit)
	copy(out, r.items[:limit])
	return out, nil
}
