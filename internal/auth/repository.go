package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolhunt-ai/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a user by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT id, email, password_hash, full_name, is_admin, is_pro, created_at, updated_at
		FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.Password, &u.FullName,
		&u.IsAdmin, &u.IsPro, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user by email (case-insensitive), or nil when absent.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT id, email, password_hash, full_name, is_admin, is_pro, created_at, updated_at
		FROM users WHERE lower(email) = lower($1)`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.Password, &u.FullName,
		&u.IsAdmin, &u.IsPro, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName string) (*models.User, error) {
	const q = `INSERT INTO users (email, password_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, full_name, is_admin, is_pro, created_at, updated_at`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email, passwordHash, fullName).
		Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.IsAdmin, &u.IsPro, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetProByEmail updates the subscriber flag for the given email.
// Returns the number of rows updated (0 when no such user).
func (r *Repository) SetProByEmail(ctx context.Context, email string, pro bool) (int64, error) {
	const q = `UPDATE users SET is_pro = $2, updated_at = now() WHERE lower(email) = lower($1)`
	tag, err := r.pool.Exec(ctx, q, email, pro)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IsPro reports the current subscriber flag for a user.
func (r *Repository) IsPro(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT is_pro FROM users WHERE id = $1`
	var pro bool
	err := r.pool.QueryRow(ctx, q, id).Scan(&pro)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return pro, nil
}
