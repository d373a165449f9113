package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolhunt-ai/backend/internal/models"
)

const toolColumns = `slug, name, website_url, COALESCE(affiliate_url,''), tagline, description,
	category, pricing, tags, status, featured, verified, free_trial, COALESCE(logo_key,''),
	source_submission_id, COALESCE(submitter_email,''), created_at, updated_at`

// Repository handles tool persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tools repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTool(row pgx.Row) (*models.Tool, error) {
	var t models.Tool
	err := row.Scan(&t.Slug, &t.Name, &t.WebsiteURL, &t.AffiliateURL, &t.Tagline, &t.Description,
		&t.Category, &t.Pricing, &t.Tags, &t.Status, &t.Featured, &t.Verified, &t.FreeTrial, &t.LogoKey,
		&t.SourceSubmissionID, &t.SubmitterEmail, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBySlug returns a tool by slug, or nil when absent.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Tool, error) {
	q := `SELECT ` + toolColumns + ` FROM tools WHERE slug = $1`
	t, err := scanTool(r.pool.QueryRow(ctx, q, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ExistsSlug reports whether a tool with the slug exists.
func (r *Repository) ExistsSlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tools WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// List returns published tools matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f models.ToolFilter) ([]*models.Tool, error) {
	q := `SELECT ` + toolColumns + ` FROM tools WHERE status = 'published'`
	args := []interface{}{}
	i := 1
	if f.Category != "" {
		q += fmt.Sprintf(" AND category = $%d", i)
		args = append(args, f.Category)
		i++
	}
	if f.Tag != "" {
		q += fmt.Sprintf(" AND $%d = ANY(tags)", i)
		args = append(args, f.Tag)
		i++
	}
	if f.Query != "" {
		q += fmt.Sprintf(" AND (name ILIKE $%d OR tagline ILIKE $%d)", i, i)
		args = append(args, "%"+f.Query+"%")
		i++
	}
	if f.Featured != nil {
		q += fmt.Sprintf(" AND featured = $%d", i)
		args = append(args, *f.Featured)
		i++
	}
	q += " ORDER BY created_at DESC"
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Create inserts a new tool.
func (r *Repository) Create(ctx context.Context, t *models.Tool) error {
	const q = `INSERT INTO tools
		(slug, name, website_url, affiliate_url, tagline, description, category, pricing, tags,
		 status, featured, verified, free_trial, source_submission_id, submitter_email)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NULLIF($15,''))
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.Slug, t.Name, t.WebsiteURL, t.AffiliateURL, t.Tagline,
		t.Description, t.Category, t.Pricing, t.Tags, t.Status, t.Featured, t.Verified,
		t.FreeTrial, t.SourceSubmissionID, t.SubmitterEmail).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

// UpdateStatus sets a tool's publication status. Returns rows affected.
func (r *Repository) UpdateStatus(ctx context.Context, slug string, status models.ToolStatus) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tools SET status = $2, updated_at = now() WHERE slug = $1`, slug, status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UpdateFlags merge-updates the commercial flags; nil fields are left as-is.
func (r *Repository) UpdateFlags(ctx context.Context, slug string, featured, verified, freeTrial *bool) (int64, error) {
	const q = `UPDATE tools SET
		featured   = COALESCE($2, featured),
		verified   = COALESCE($3, verified),
		free_trial = COALESCE($4, free_trial),
		updated_at = now()
		WHERE slug = $1`
	tag, err := r.pool.Exec(ctx, q, slug, featured, verified, freeTrial)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SetLogoKey records the S3 object key for a tool's logo.
func (r *Repository) SetLogoKey(ctx context.Context, slug, key string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tools SET logo_key = $2, updated_at = now() WHERE slug = $1`, slug, key)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
