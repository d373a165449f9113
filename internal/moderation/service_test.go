package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhunt-ai/backend/internal/models"
	"github.com/toolhunt-ai/backend/pkg/queue"
)

type fakeSubmissionStore struct {
	subs     map[uuid.UUID]*models.Submission
	rejected []uuid.UUID
}

func newFakeSubmissionStore(subs ...*models.Submission) *fakeSubmissionStore {
	m := make(map[uuid.UUID]*models.Submission)
	for _, s := range subs {
		m[s.ID] = s
	}
	return &fakeSubmissionStore{subs: m}
}

func (f *fakeSubmissionStore) GetByID(_ context.Context, id uuid.UUID) (*models.Submission, error) {
	return f.subs[id], nil
}

func (f *fakeSubmissionStore) MarkRejected(_ context.Context, id uuid.UUID, reason, moderatorUID string) (int64, error) {
	s, ok := f.subs[id]
	if !ok || s.Status != models.SubmissionPending {
		return 0, nil
	}
	s.Status = models.SubmissionRejected
	s.RejectReason = reason
	s.ModeratedByUID = moderatorUID
	f.rejected = append(f.rejected, id)
	return 1, nil
}

type fakeToolStore struct {
	existing map[string]*models.Tool
}

func (f *fakeToolStore) GetBySlug(_ context.Context, slug string) (*models.Tool, error) {
	return f.existing[slug], nil
}

type fakeAuditStore struct {
	converted []*models.Tool
	deleted   []uuid.UUID
	log       []*models.ModerationLogEntry
	logErr    error
}

func (f *fakeAuditStore) ConvertSubmission(_ context.Context, submissionID uuid.UUID, t *models.Tool) error {
	f.converted = append(f.converted, t)
	f.deleted = append(f.deleted, submissionID)
	return nil
}

func (f *fakeAuditStore) DeleteSubmission(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAuditStore) InsertLogEntry(_ context.Context, e *models.ModerationLogEntry) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.log = append(f.log, e)
	return nil
}

type fakeNotifier struct {
	sent []queue.EmailPayload
	err  error
}

func (f *fakeNotifier) EnqueueEmail(_ context.Context, payload queue.EmailPayload) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, payload)
	return nil
}

type fakeFeed struct {
	events []string
}

func (f *fakeFeed) BroadcastModerationEvent(event string, _ interface{}) {
	f.events = append(f.events, event)
}

func pendingSubmission(name string) *models.Submission {
	return &models.Submission{
		ID:           uuid.New(),
		Name:         name,
		WebsiteURL:   "https://example.com",
		Tagline:      "writes things for you",
		Description:  "A long enough description of what this assistant actually does for writers.",
		Category:     "writing",
		ContactEmail: "maker@example.com",
		Tags:         []string{"assistant"},
		Status:       models.SubmissionPending,
	}
}

func moderator() *models.SessionUser {
	return &models.SessionUser{UID: uuid.New().String(), Email: "mod@example.com", Admin: true}
}

func TestApproveConvertsSubmission(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	subs := newFakeSubmissionStore(sub)
	audit := &fakeAuditStore{}
	notifier := &fakeNotifier{}
	feed := &fakeFeed{}
	svc := NewService(subs, &fakeToolStore{}, audit, notifier, feed, nil)

	res, err := svc.Approve(context.Background(), sub.ID, moderator())
	require.NoError(t, err)
	assert.Equal(t, "jasper-ai", res.ToolSlug)
	assert.False(t, res.Existed)

	require.Len(t, audit.converted, 1)
	tool := audit.converted[0]
	assert.Equal(t, models.ToolPublished, tool.Status)
	assert.Equal(t, sub.Name, tool.Name)
	assert.Equal(t, sub.ContactEmail, tool.SubmitterEmail)
	require.NotNil(t, tool.SourceSubmissionID)
	assert.Equal(t, sub.ID, *tool.SourceSubmissionID)
	assert.False(t, tool.Featured)
	assert.False(t, tool.Verified)

	assert.Contains(t, audit.deleted, sub.ID)
	require.Len(t, audit.log, 1)
	assert.Equal(t, models.ActionApproved, audit.log[0].Action)
	assert.Equal(t, "jasper-ai", audit.log[0].ToolSlug)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, sub.ContactEmail, notifier.sent[0].RecipientEmail)
	assert.Contains(t, feed.events, "submission_approved")
}

func TestApproveExistingSlugLeavesToolUntouched(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	subs := newFakeSubmissionStore(sub)
	toolStore := &fakeToolStore{existing: map[string]*models.Tool{
		"jasper-ai": {Slug: "jasper-ai", Status: models.ToolPublished},
	}}
	audit := &fakeAuditStore{}
	svc := NewService(subs, toolStore, audit, nil, nil, nil)

	res, err := svc.Approve(context.Background(), sub.ID, moderator())
	require.NoError(t, err)
	assert.True(t, res.Existed)
	assert.Equal(t, "jasper-ai", res.ToolSlug)

	assert.Empty(t, audit.converted)
	assert.Contains(t, audit.deleted, sub.ID)
	require.Len(t, audit.log, 1)
	assert.Equal(t, models.ActionApprovedExisting, audit.log[0].Action)
}

func TestApproveUnknownSubmission(t *testing.T) {
	svc := NewService(newFakeSubmissionStore(), &fakeToolStore{}, &fakeAuditStore{}, nil, nil, nil)

	_, err := svc.Approve(context.Background(), uuid.New(), moderator())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveResolvedSubmission(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	sub.Status = models.SubmissionRejected
	svc := NewService(newFakeSubmissionStore(sub), &fakeToolStore{}, &fakeAuditStore{}, nil, nil, nil)

	_, err := svc.Approve(context.Background(), sub.ID, moderator())
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestApproveEmptySlug(t *testing.T) {
	sub := pendingSubmission("!!! ???")
	audit := &fakeAuditStore{}
	svc := NewService(newFakeSubmissionStore(sub), &fakeToolStore{}, audit, nil, nil, nil)

	_, err := svc.Approve(context.Background(), sub.ID, moderator())
	assert.ErrorIs(t, err, ErrEmptySlug)
	assert.Empty(t, audit.converted)
	assert.Empty(t, audit.log)
}

func TestApproveSurvivesNotifierFailure(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	notifier := &fakeNotifier{err: errors.New("redis down")}
	svc := NewService(newFakeSubmissionStore(sub), &fakeToolStore{}, &fakeAuditStore{}, notifier, nil, nil)

	res, err := svc.Approve(context.Background(), sub.ID, moderator())
	require.NoError(t, err)
	assert.Equal(t, "jasper-ai", res.ToolSlug)
}

func TestRejectRetainsSubmission(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	subs := newFakeSubmissionStore(sub)
	audit := &fakeAuditStore{}
	notifier := &fakeNotifier{}
	mod := moderator()
	svc := NewService(subs, &fakeToolStore{}, audit, notifier, nil, nil)

	err := svc.Reject(context.Background(), sub.ID, "duplicate listing", mod)
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionRejected, sub.Status)
	assert.Equal(t, "duplicate listing", sub.RejectReason)
	assert.Equal(t, mod.UID, sub.ModeratedByUID)
	assert.Empty(t, audit.deleted)

	require.Len(t, audit.log, 1)
	assert.Equal(t, models.ActionRejected, audit.log[0].Action)
	assert.Equal(t, "duplicate listing", audit.log[0].Reason)
	require.Len(t, notifier.sent, 1)
}

func TestRejectResolvedIsNoOp(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	sub.Status = models.SubmissionRejected
	subs := newFakeSubmissionStore(sub)
	audit := &fakeAuditStore{}
	svc := NewService(subs, &fakeToolStore{}, audit, nil, nil, nil)

	err := svc.Reject(context.Background(), sub.ID, "again", moderator())
	require.NoError(t, err)
	assert.Empty(t, subs.rejected)
	assert.Empty(t, audit.log)
}

func TestRejectUnknownSubmission(t *testing.T) {
	svc := NewService(newFakeSubmissionStore(), &fakeToolStore{}, &fakeAuditStore{}, nil, nil, nil)

	err := svc.Reject(context.Background(), uuid.New(), "", moderator())
	assert.ErrorIs(t, err, ErrNotFound)
}
