package submissions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhunt-ai/backend/internal/models"
)

type fakeStore struct {
	created []*models.Submission
}

func (f *fakeStore) Create(_ context.Context, s *models.Submission) error {
	s.Status = models.SubmissionPending
	f.created = append(f.created, s)
	return nil
}

type fakeLimiter struct {
	limit int
	calls int
}

func (f *fakeLimiter) Allow(_ context.Context, _ string) (bool, error) {
	f.calls++
	return f.calls <= f.limit, nil
}

type fakeFeed struct {
	events []string
}

func (f *fakeFeed) BroadcastModerationEvent(event string, _ interface{}) {
	f.events = append(f.events, event)
}

func newSubmitRouter(store *fakeStore, limiter *fakeLimiter, feed *fakeFeed) *gin.Engine {
	gin.SetMode(gin.TestMode)
	var fp FeedPublisher
	if feed != nil {
		fp = feed
	}
	h := NewHandler(store, limiter, fp, nil)
	r := gin.New()
	r.POST("/submissions", h.Submit)
	return r
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"name":          "Jasper AI",
		"website_url":   "https://jasper.example.com",
		"tagline":       "writes marketing copy",
		"description":   "Generates long-form marketing copy from short prompts, with templates for ads and blogs.",
		"category":      "Writing",
		"contact_email": "maker@example.com",
		"tags":          []string{"copywriting"},
	}
}

func postSubmission(r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitHappyPath(t *testing.T) {
	store := &fakeStore{}
	feed := &fakeFeed{}
	r := newSubmitRouter(store, &fakeLimiter{limit: 5}, feed)

	w := postSubmission(r, validBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, "Jasper AI", created.Name)
	assert.Equal(t, "writing", created.Category) // normalized to lowercase
	assert.Equal(t, models.SubmissionPending, created.Status)
	assert.Contains(t, feed.events, "submission_received")
	assert.Contains(t, w.Body.String(), `"ok":true`)
}

func TestSubmitValidationFailure(t *testing.T) {
	store := &fakeStore{}
	limiter := &fakeLimiter{limit: 5}
	r := newSubmitRouter(store, limiter, nil)

	body := validBody()
	body["name"] = "x"
	body["website_url"] = "ftp://nope"
	w := postSubmission(r, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"fields"`)
	assert.Contains(t, w.Body.String(), `"name"`)
	assert.Empty(t, store.created)
	// Invalid requests never consume quota.
	assert.Zero(t, limiter.calls)
}

func TestSubmitHoneypot(t *testing.T) {
	store := &fakeStore{}
	limiter := &fakeLimiter{limit: 5}
	r := newSubmitRouter(store, limiter, nil)

	body := validBody()
	body["company"] = "Totally Real Inc"
	w := postSubmission(r, body)

	// Success-shaped so the bot cannot tell it was dropped.
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
	assert.Contains(t, w.Body.String(), `"pending"`)
	assert.Empty(t, store.created)
	assert.Zero(t, limiter.calls)
}

func TestSubmitRateLimited(t *testing.T) {
	store := &fakeStore{}
	r := newSubmitRouter(store, &fakeLimiter{limit: 5}, nil)

	for i := 0; i < 5; i++ {
		w := postSubmission(r, validBody())
		assert.Equal(t, http.StatusCreated, w.Code)
	}
	w := postSubmission(r, validBody())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":false`)
	assert.Len(t, store.created, 5)
}
