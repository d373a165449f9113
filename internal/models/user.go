package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account in the identity store.
// IsAdmin is the out-of-band moderator claim; the configured email allow-list
// is checked in addition to it.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name"`
	IsAdmin   bool      `json:"is_admin"`
	IsPro     bool      `json:"is_pro"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsAdmin   bool      `json:"is_admin"`
	IsPro     bool      `json:"is_pro"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		IsAdmin:   u.IsAdmin,
		IsPro:     u.IsPro,
		CreatedAt: u.CreatedAt,
	}
}

// SessionUser is the identity derived from a verified session credential.
// It is recomputed per request and never persisted.
type SessionUser struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	Pro   bool   `json:"pro"`
}
