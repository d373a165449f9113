package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toolhunt-ai/backend/internal/models"
	"github.com/toolhunt-ai/backend/internal/tools"
	"github.com/toolhunt-ai/backend/pkg/queue"
)

var (
	// ErrNotFound: the referenced submission does not exist.
	ErrNotFound = errors.New("submission not found")
	// ErrEmptySlug: neither the explicit slug nor the name yields an identifier.
	ErrEmptySlug = errors.New("submission does not yield a valid slug")
	// ErrAlreadyResolved: approve called on a submission that is no longer pending.
	ErrAlreadyResolved = errors.New("submission already resolved")
)

// SubmissionStore loads and mutates submissions.
type SubmissionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	MarkRejected(ctx context.Context, id uuid.UUID, reason, moderatorUID string) (int64, error)
}

// ToolStore reads published tools for the overwrite guard.
type ToolStore interface {
	GetBySlug(ctx context.Context, slug string) (*models.Tool, error)
}

// AuditStore owns tool conversion and the append-only moderation log.
type AuditStore interface {
	ConvertSubmission(ctx context.Context, submissionID uuid.UUID, t *models.Tool) error
	DeleteSubmission(ctx context.Context, id uuid.UUID) error
	InsertLogEntry(ctx context.Context, e *models.ModerationLogEntry) error
}

// Notifier enqueues best-effort submitter notifications.
type Notifier interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// FeedPublisher pushes moderation feed events to connected admin dashboards.
type FeedPublisher interface {
	BroadcastModerationEvent(event string, payload interface{})
}

// ApproveResult reports the outcome of an approval.
type ApproveResult struct {
	ToolSlug string `json:"tool_slug"`
	// Existed is true when a tool with the derived slug already existed; the
	// published tool was left untouched and the submission discarded.
	Existed bool `json:"existed"`
}

// Service implements the submission moderation workflow: a two-state machine
// moving submissions from pending to approved or rejected, with an
// append-only audit log.
type Service struct {
	submissions SubmissionStore
	tools       ToolStore
	audit       AuditStore
	notifier    Notifier
	feed        FeedPublisher
	logger      *zap.Logger
}

// NewService creates the moderation service. notifier and feed may be nil.
func NewService(submissions SubmissionStore, toolStore ToolStore, audit AuditStore, notifier Notifier, feed FeedPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		submissions: submissions,
		tools:       toolStore,
		audit:       audit,
		notifier:    notifier,
		feed:        feed,
		logger:      logger,
	}
}

// Approve converts a pending submission into a published tool. When a tool
// with the derived slug already exists the published tool is never
// overwritten: the submission is discarded and the existing slug returned.
// The guard also makes a manual retry after a partial failure safe.
func (s *Service) Approve(ctx context.Context, submissionID uuid.UUID, moderator *models.SessionUser) (*ApproveResult, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("load submission: %w", err)
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	if sub.Status != models.SubmissionPending {
		return nil, ErrAlreadyResolved
	}

	source := sub.Slug
	if source == "" {
		source = sub.Name
	}
	slug := tools.Slugify(source)
	if slug == "" {
		return nil, ErrEmptySlug
	}

	existing, err := s.tools.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("check existing tool: %w", err)
	}

	entry := &models.ModerationLogEntry{
		SubmissionID:   sub.ID,
		ToolSlug:       slug,
		ModeratorUID:   moderator.UID,
		ModeratorEmail: moderator.Email,
		SubmissionName: sub.Name,
		Category:       sub.Category,
		SubmitterEmail: sub.ContactEmail,
	}

	if existing != nil {
		// Double-approval or slug collision: keep the published tool intact.
		entry.Action = models.ActionApprovedExisting
		if err := s.audit.InsertLogEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("append moderation log: %w", err)
		}
		if err := s.audit.DeleteSubmission(ctx, sub.ID); err != nil {
			return nil, fmt.Errorf("delete submission: %w", err)
		}
		s.logger.Info("approval hit existing tool",
			zap.String("submission_id", sub.ID.String()), zap.String("tool_slug", slug))
		s.broadcast("submission_approved", sub, slug)
		return &ApproveResult{ToolSlug: slug, Existed: true}, nil
	}

	subID := sub.ID
	t := &models.Tool{
		Slug:               slug,
		Name:               sub.Name,
		WebsiteURL:         sub.WebsiteURL,
		AffiliateURL:       sub.AffiliateURL,
		Tagline:            sub.Tagline,
		Description:        sub.Description,
		Category:           sub.Category,
		Pricing:            sub.Pricing,
		Tags:               sub.Tags,
		Status:             models.ToolPublished,
		Featured:           false,
		Verified:           false,
		FreeTrial:          false,
		SourceSubmissionID: &subID,
		SubmitterEmail:     sub.ContactEmail,
	}
	if err := s.audit.ConvertSubmission(ctx, sub.ID, t); err != nil {
		return nil, fmt.Errorf("convert submission: %w", err)
	}

	entry.Action = models.ActionApproved
	if err := s.audit.InsertLogEntry(ctx, entry); err != nil {
		// Conversion already committed; surface the error so the log gap is
		// noticed, a retry hits the existing-tool guard above.
		return nil, fmt.Errorf("append moderation log: %w", err)
	}

	s.notify(ctx, sub, "submission_approved", slug,
		"Your tool was approved",
		fmt.Sprintf("Good news: %q is now listed on the directory as %s.", sub.Name, slug))
	s.broadcast("submission_approved", sub, slug)

	s.logger.Info("submission approved",
		zap.String("submission_id", sub.ID.String()),
		zap.String("tool_slug", slug),
		zap.String("moderator", moderator.Email))
	return &ApproveResult{ToolSlug: slug}, nil
}

// Reject marks a pending submission rejected and retains it for audit.
// Rejecting an already-resolved submission is a no-op.
func (s *Service) Reject(ctx context.Context, submissionID uuid.UUID, reason string, moderator *models.SessionUser) error {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("load submission: %w", err)
	}
	if sub == nil {
		return ErrNotFound
	}
	if sub.Status != models.SubmissionPending {
		return nil
	}

	n, err := s.submissions.MarkRejected(ctx, sub.ID, reason, moderator.UID)
	if err != nil {
		return fmt.Errorf("mark rejected: %w", err)
	}
	if n == 0 {
		// Lost a race with another moderator; their log entry stands.
		return nil
	}

	entry := &models.ModerationLogEntry{
		Action:         models.ActionRejected,
		SubmissionID:   sub.ID,
		ModeratorUID:   moderator.UID,
		ModeratorEmail: moderator.Email,
		Reason:         reason,
		SubmissionName: sub.Name,
		Category:       sub.Category,
		SubmitterEmail: sub.ContactEmail,
	}
	if err := s.audit.InsertLogEntry(ctx, entry); err != nil {
		return fmt.Errorf("append moderation log: %w", err)
	}

	body := fmt.Sprintf("Your submission %q was not accepted.", sub.Name)
	if reason != "" {
		body += " Reason: " + reason
	}
	s.notify(ctx, sub, "submission_rejected", "", "Your submission was not accepted", body)
	s.broadcast("submission_rejected", sub, "")

	s.logger.Info("submission rejected",
		zap.String("submission_id", sub.ID.String()),
		zap.String("moderator", moderator.Email))
	return nil
}

// notify enqueues a submitter email. Failures are logged, never surfaced:
// notification is non-critical and must not fail the moderation action.
func (s *Service) notify(ctx context.Context, sub *models.Submission, emailType, toolSlug, subject, body string) {
	if s.notifier == nil || sub.ContactEmail == "" {
		return
	}
	err := s.notifier.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType:      emailType,
		SubmissionID:   sub.ID.String(),
		ToolSlug:       toolSlug,
		RecipientEmail: sub.ContactEmail,
		Subject:        subject,
		BodyText:       body,
	})
	if err != nil {
		s.logger.Warn("enqueue notification failed", zap.Error(err), zap.String("submission_id", sub.ID.String()))
	}
}

func (s *Service) broadcast(event string, sub *models.Submission, toolSlug string) {
	if s.feed == nil {
		return
	}
	payload := map[string]interface{}{"submission_id": sub.ID, "name": sub.Name}
	if toolSlug != "" {
		payload["tool_slug"] = toolSlug
	}
	s.feed.BroadcastModerationEvent(event, payload)
}
