package moderation

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhunt-ai/backend/internal/middleware"
	"github.com/toolhunt-ai/backend/internal/models"
)

type fakeQueueStore struct {
	*fakeSubmissionStore
}

func (f *fakeQueueStore) ListByStatus(_ context.Context, status models.SubmissionStatus, _ int) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, s := range f.subs {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeLogStore struct {
	audit *fakeAuditStore
}

func (f *fakeLogStore) ListLog(_ context.Context, _ int) ([]*models.ModerationLogEntry, error) {
	return f.audit.log, nil
}

func newModerationRouter(subs *fakeSubmissionStore, toolStore *fakeToolStore, audit *fakeAuditStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(subs, toolStore, audit, nil, nil, nil)
	h := NewHandler(svc, &fakeQueueStore{subs}, &fakeLogStore{audit}, nil)

	r := gin.New()
	// Stand-in for the admin gate: inject a moderator session.
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextSessionUser, &models.SessionUser{
			UID: uuid.New().String(), Email: "mod@example.com", Admin: true,
		})
	})
	r.GET("/submissions", h.ListQueue)
	r.GET("/submissions/:id", h.GetSubmission)
	r.POST("/submissions/:id/approve", h.Approve)
	r.POST("/submissions/:id/reject", h.Reject)
	r.GET("/moderation/log", h.ListLog)
	return r
}

func TestApproveEndpoint(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	audit := &fakeAuditStore{}
	r := newModerationRouter(newFakeSubmissionStore(sub), &fakeToolStore{}, audit)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions/"+sub.ID.String()+"/approve", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tool_slug":"jasper-ai"`)
	require.Len(t, audit.converted, 1)
}

func TestApproveEndpointErrors(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	sub.Status = models.SubmissionRejected
	r := newModerationRouter(newFakeSubmissionStore(sub), &fakeToolStore{}, &fakeAuditStore{})

	cases := []struct {
		name string
		path string
		want int
	}{
		{"malformed id", "/submissions/not-a-uuid/approve", http.StatusBadRequest},
		{"unknown id", "/submissions/" + uuid.NewString() + "/approve", http.StatusNotFound},
		{"already resolved", "/submissions/" + sub.ID.String() + "/approve", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRejectEndpointWithReason(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	subs := newFakeSubmissionStore(sub)
	audit := &fakeAuditStore{}
	r := newModerationRouter(subs, &fakeToolStore{}, audit)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"reason":"duplicate listing"}`)
	req := httptest.NewRequest(http.MethodPost, "/submissions/"+sub.ID.String()+"/reject", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SubmissionRejected, sub.Status)
	assert.Equal(t, "duplicate listing", sub.RejectReason)
}

func TestRejectEndpointWithoutBody(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	r := newModerationRouter(newFakeSubmissionStore(sub), &fakeToolStore{}, &fakeAuditStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions/"+sub.ID.String()+"/reject", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SubmissionRejected, sub.Status)
}

func TestListQueueEndpoint(t *testing.T) {
	pending := pendingSubmission("Pending Tool")
	rejected := pendingSubmission("Rejected Tool")
	rejected.Status = models.SubmissionRejected
	r := newModerationRouter(newFakeSubmissionStore(pending, rejected), &fakeToolStore{}, &fakeAuditStore{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/submissions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pending Tool")
	assert.NotContains(t, w.Body.String(), "Rejected Tool")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/submissions?status=rejected", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rejected Tool")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/submissions?status=approved", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModerationLogEndpoint(t *testing.T) {
	sub := pendingSubmission("Jasper AI")
	audit := &fakeAuditStore{}
	r := newModerationRouter(newFakeSubmissionStore(sub), &fakeToolStore{}, audit)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions/"+sub.ID.String()+"/approve", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/moderation/log", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approved"`)
	assert.Contains(t, w.Body.String(), `"count":1`)
}
