package models

import (
	"time"

	"github.com/google/uuid"
)

// ToolStatus is the publication state of a directory entry.
type ToolStatus string

const (
	ToolDraft     ToolStatus = "draft"
	ToolPending   ToolStatus = "pending"
	ToolPublished ToolStatus = "published"
	ToolRejected  ToolStatus = "rejected"
)

// Tool represents a published directory entry. Slug is the primary
// identifier and is unique within the directory.
type Tool struct {
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	WebsiteURL   string     `json:"website_url"`
	AffiliateURL string     `json:"affiliate_url,omitempty"`
	Tagline      string     `json:"tagline"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Pricing      string     `json:"pricing"`
	Tags         []string   `json:"tags"`
	Status       ToolStatus `json:"status"`
	Featured     bool       `json:"featured"`
	Verified     bool       `json:"verified"`
	FreeTrial    bool       `json:"free_trial"`
	LogoKey      string     `json:"logo_key,omitempty"`

	// Provenance: set when the tool was created from an approved submission.
	SourceSubmissionID *uuid.UUID `json:"source_submission_id,omitempty"`
	SubmitterEmail     string     `json:"submitter_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToolFilter narrows public directory listings.
type ToolFilter struct {
	Category string
	Tag      string
	Query    string // case-insensitive substring on name/tagline
	Featured *bool
	Limit    int
	Offset   int
}
