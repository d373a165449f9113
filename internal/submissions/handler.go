package submissions

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toolhunt-ai/backend/internal/models"
	"github.com/toolhunt-ai/backend/internal/ratelimit"
	"github.com/toolhunt-ai/backend/pkg/response"
)

// SubmitRequest is the body for POST /submissions (public intake).
// Company is a honeypot: real users never see the field, so a filled value
// marks the submission as bot traffic.
type SubmitRequest struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	WebsiteURL   string   `json:"website_url"`
	AffiliateURL string   `json:"affiliate_url"`
	Tagline      string   `json:"tagline"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Pricing      string   `json:"pricing"`
	ContactEmail string   `json:"contact_email"`
	Tags         []string `json:"tags"`
	Company      string   `json:"company"`
}

// Store persists submissions.
type Store interface {
	Create(ctx context.Context, s *models.Submission) error
}

// FeedPublisher pushes moderation feed events to connected admin dashboards.
type FeedPublisher interface {
	BroadcastModerationEvent(event string, payload interface{})
}

// Handler handles the public submission endpoint.
type Handler struct {
	store   Store
	limiter ratelimit.Limiter
	feed    FeedPublisher
	logger  *zap.Logger
}

// NewHandler creates a submissions handler. feed may be nil.
func NewHandler(store Store, limiter ratelimit.Limiter, feed FeedPublisher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, limiter: limiter, feed: feed, logger: logger}
}

// Submit handles POST /submissions.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	// Honeypot hit: answer success-shaped, persist nothing, consume no quota.
	if strings.TrimSpace(req.Company) != "" {
		h.logger.Info("honeypot submission dropped", zap.String("client_ip", c.ClientIP()))
		response.Created(c, gin.H{"id": uuid.New(), "status": models.SubmissionPending})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, response.Body{OK: false, Error: "validation failed", Data: gin.H{"fields": errs}})
		return
	}

	allowed, err := h.limiter.Allow(c.Request.Context(), c.ClientIP())
	if err != nil {
		h.logger.Error("rate limit check failed", zap.Error(err))
		response.Internal(c, "failed to accept submission")
		return
	}
	if !allowed {
		response.TooManyRequests(c, "daily submission limit reached, try again tomorrow")
		return
	}

	s := &models.Submission{
		Name:         strings.TrimSpace(req.Name),
		Slug:         strings.TrimSpace(req.Slug),
		WebsiteURL:   strings.TrimSpace(req.WebsiteURL),
		AffiliateURL: strings.TrimSpace(req.AffiliateURL),
		Tagline:      strings.TrimSpace(req.Tagline),
		Description:  strings.TrimSpace(req.Description),
		Category:     strings.ToLower(strings.TrimSpace(req.Category)),
		Pricing:      strings.TrimSpace(req.Pricing),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Tags:         req.Tags,
	}
	if err := h.store.Create(c.Request.Context(), s); err != nil {
		h.logger.Error("create submission failed", zap.Error(err))
		response.Internal(c, "failed to accept submission")
		return
	}

	if h.feed != nil {
		h.feed.BroadcastModerationEvent("submission_received", gin.H{
			"id": s.ID, "name": s.Name, "category": s.Category, "created_at": s.CreatedAt,
		})
	}
	response.Created(c, gin.H{"id": s.ID, "status": s.Status})
}
