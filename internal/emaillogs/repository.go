package emaillogs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolhunt-ai/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts a delivery attempt outcome.
func (r *Repository) Record(ctx context.Context, e *models.EmailLog) error {
	const q = `INSERT INTO email_logs (submission_id, email_type, recipient_email, subject, status, sent_at, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''))
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, e.SubmissionID, e.EmailType, e.RecipientEmail, e.Subject,
		e.Status, e.SentAt, e.ErrorMessage).
		Scan(&e.ID, &e.CreatedAt)
}

// ListRecent returns the latest delivery attempts, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*models.EmailLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `SELECT id, submission_id, email_type, recipient_email, subject, status, sent_at, COALESCE(error_message,''), created_at
		FROM email_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		var subID *uuid.UUID
		var sentAt *time.Time
		if err := rows.Scan(&el.ID, &subID, &el.EmailType, &el.RecipientEmail, &el.Subject,
			&el.Status, &sentAt, &el.ErrorMessage, &el.CreatedAt); err != nil {
			return nil, err
		}
		el.SubmissionID = subID
		el.SentAt = sentAt
		list = append(list, &el)
	}
	return list, rows.Err()
}
