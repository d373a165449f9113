package models

import (
	"time"

	"github.com/google/uuid"
)

// ModerationAction identifies the moderation outcome recorded in the log.
type ModerationAction string

const (
	// ActionApproved: submission converted into a new published tool.
	ActionApproved ModerationAction = "approved"
	// ActionApprovedExisting: approval hit an existing tool slug; the
	// published tool was left untouched and the submission discarded.
	ActionApprovedExisting ModerationAction = "approved_existing"
	// ActionRejected: submission marked rejected and retained.
	ActionRejected ModerationAction = "rejected"
)

// ModerationLogEntry is an append-only audit record, one per moderation
// action. Entries are never mutated or deleted.
type ModerationLogEntry struct {
	ID             uuid.UUID        `json:"id"`
	Action         ModerationAction `json:"action"`
	SubmissionID   uuid.UUID        `json:"submission_id"`
	ToolSlug       string           `json:"tool_slug,omitempty"`
	ModeratorUID   string           `json:"moderator_uid"`
	ModeratorEmail string           `json:"moderator_email"`
	Reason         string           `json:"reason,omitempty"`

	// Snapshot of key submission fields at time of action.
	SubmissionName string `json:"submission_name"`
	Category       string `json:"category"`
	SubmitterEmail string `json:"submitter_email"`

	CreatedAt time.Time `json:"created_at"`
}
