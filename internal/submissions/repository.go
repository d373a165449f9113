package submissions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolhunt-ai/backend/internal/models"
)

const submissionColumns = `id, name, COALESCE(slug,''), COALESCE(website_url,''), COALESCE(affiliate_url,''),
	tagline, description, category, COALESCE(pricing,''), COALESCE(contact_email,''), tags, status,
	COALESCE(reject_reason,''), moderated_at, COALESCE(moderated_by_uid,''), created_at`

// Repository handles submission persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a submissions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.WebsiteURL, &s.AffiliateURL,
		&s.Tagline, &s.Description, &s.Category, &s.Pricing, &s.ContactEmail, &s.Tags, &s.Status,
		&s.RejectReason, &s.ModeratedAt, &s.ModeratedByUID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new pending submission.
func (r *Repository) Create(ctx context.Context, s *models.Submission) error {
	const q = `INSERT INTO submissions
		(name, slug, website_url, affiliate_url, tagline, description, category, pricing, contact_email, tags)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), $5, $6, $7, NULLIF($8,''), NULLIF($9,''), $10)
		RETURNING id, status, created_at`
	return r.pool.QueryRow(ctx, q, s.Name, s.Slug, s.WebsiteURL, s.AffiliateURL,
		s.Tagline, s.Description, s.Category, s.Pricing, s.ContactEmail, s.Tags).
		Scan(&s.ID, &s.Status, &s.CreatedAt)
}

// GetByID returns a submission by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	q := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	s, err := scanSubmission(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByStatus returns submissions with the given status, oldest first so the
// moderation queue is worked in arrival order.
func (r *Repository) ListByStatus(ctx context.Context, status models.SubmissionStatus, limit int) ([]*models.Submission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT ` + submissionColumns + ` FROM submissions WHERE status = $1 ORDER BY created_at ASC LIMIT $2`
	rows, err := r.pool.Query(ctx, q, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// MarkRejected merge-updates only the moderation fields of a pending
// submission; unrelated fields are untouched. Returns rows affected, which is
// zero when the submission is absent or already resolved.
func (r *Repository) MarkRejected(ctx context.Context, id uuid.UUID, reason, moderatorUID string) (int64, error) {
	const q = `UPDATE submissions SET
		status = 'rejected',
		reject_reason = NULLIF($2,''),
		moderated_at = now(),
		moderated_by_uid = $3
		WHERE id = $1 AND status = 'pending'`
	tag, err := r.pool.Exec(ctx, q, id, reason, moderatorUID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes a submission (approved path only).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	return err
}
