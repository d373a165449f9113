package prolibrary

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolhunt-ai/backend/internal/models"
)

// Repository handles pro resource persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a pro library repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns published pro resources, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]*models.ProResource, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const q = `SELECT id, title, kind, summary, content_url, published_at, created_at
		FROM pro_resources
		WHERE published_at <= now()
		ORDER BY published_at DESC
		LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ProResource
	for rows.Next() {
		var p models.ProResource
		if err := rows.Scan(&p.ID, &p.Title, &p.Kind, &p.Summary, &p.ContentURL, &p.PublishedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
