package models

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus is the moderation state of a submission.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission represents a publicly proposed tool awaiting moderation.
// Status only moves pending -> approved or pending -> rejected; approved
// submissions are deleted after conversion, rejected ones are retained.
type Submission struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug,omitempty"` // optional explicit slug; falls back to name
	WebsiteURL     string           `json:"website_url"`
	AffiliateURL   string           `json:"affiliate_url,omitempty"`
	Tagline        string           `json:"tagline"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Pricing        string           `json:"pricing"`
	ContactEmail   string           `json:"contact_email"`
	Tags           []string         `json:"tags"`
	Status         SubmissionStatus `json:"status"`
	RejectReason   string           `json:"reject_reason,omitempty"`
	ModeratedAt    *time.Time       `json:"moderated_at,omitempty"`
	ModeratedByUID string           `json:"moderated_by_uid,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}
