package moderation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolhunt-ai/backend/internal/models"
)

// Repository handles moderation log persistence and the transactional
// conversion of an approved submission into a published tool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a moderation repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ConvertSubmission creates the tool and deletes the source submission in a
// single transaction, so a half-applied approval cannot leave both records
// behind.
func (r *Repository) ConvertSubmission(ctx context.Context, submissionID uuid.UUID, t *models.Tool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `INSERT INTO tools
		(slug, name, website_url, affiliate_url, tagline, description, category, pricing, tags,
		 status, featured, verified, free_trial, source_submission_id, submitter_email)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NULLIF($15,''))
		RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, insert, t.Slug, t.Name, t.WebsiteURL, t.AffiliateURL, t.Tagline,
		t.Description, t.Category, t.Pricing, t.Tags, t.Status, t.Featured, t.Verified,
		t.FreeTrial, t.SourceSubmissionID, t.SubmitterEmail).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert tool: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, submissionID); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return tx.Commit(ctx)
}

// DeleteSubmission removes a submission outside the conversion path (used
// when approval hits an existing tool slug).
func (r *Repository) DeleteSubmission(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	return err
}

// InsertLogEntry appends an audit record. Entries are never updated or deleted.
func (r *Repository) InsertLogEntry(ctx context.Context, e *models.ModerationLogEntry) error {
	const q = `INSERT INTO moderation_log
		(action, submission_id, tool_slug, moderator_uid, moderator_email, reason,
		 submission_name, category, submitter_email)
		VALUES ($1, $2, NULLIF($3,''), $4, $5, NULLIF($6,''), $7, $8, NULLIF($9,''))
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, e.Action, e.SubmissionID, e.ToolSlug, e.ModeratorUID,
		e.ModeratorEmail, e.Reason, e.SubmissionName, e.Category, e.SubmitterEmail).
		Scan(&e.ID, &e.CreatedAt)
}

// ListLog returns recent audit entries, newest first.
func (r *Repository) ListLog(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `SELECT id, action, submission_id, COALESCE(tool_slug,''), moderator_uid, moderator_email,
		COALESCE(reason,''), submission_name, category, COALESCE(submitter_email,''), created_at
		FROM moderation_log ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ModerationLogEntry
	for rows.Next() {
		var e models.ModerationLogEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.SubmissionID, &e.ToolSlug, &e.ModeratorUID,
			&e.ModeratorEmail, &e.Reason, &e.SubmissionName, &e.Category, &e.SubmitterEmail, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
