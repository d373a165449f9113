package models

import (
	"time"

	"github.com/google/uuid"
)

// ProResource is an item in the paywall-gated content library.
type ProResource struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"` // "guide", "prompt-pack", "report"
	Summary     string    `json:"summary"`
	ContentURL  string    `json:"content_url"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}
