package models

import (
	"time"

	"github.com/google/uuid"
)

// Email delivery statuses.
const (
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusSkipped = "skipped" // SMTP not configured
)

// EmailLog records a notification delivery attempt.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	SubmissionID   *uuid.UUID `json:"submission_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
