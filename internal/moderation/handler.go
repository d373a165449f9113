package moderation

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toolhunt-ai/backend/internal/middleware"
	"github.com/toolhunt-ai/backend/internal/models"
	"github.com/toolhunt-ai/backend/pkg/response"
)

// RejectRequest is the body for POST /submissions/:id/reject.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// QueueStore lists submissions for the moderation queue.
type QueueStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	ListByStatus(ctx context.Context, status models.SubmissionStatus, limit int) ([]*models.Submission, error)
}

// LogStore reads the audit trail.
type LogStore interface {
	ListLog(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error)
}

// Handler handles moderation HTTP endpoints (admin only; the router guards
// them with the admin middleware).
type Handler struct {
	service *Service
	queue   QueueStore
	log     LogStore
	logger  *zap.Logger
}

// NewHandler creates a moderation handler.
func NewHandler(service *Service, queueStore QueueStore, logStore LogStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, queue: queueStore, log: logStore, logger: logger}
}

// Approve handles POST /submissions/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid submission id")
		return
	}
	moderator := middleware.CurrentUser(c)

	result, err := h.service.Approve(c.Request.Context(), id, moderator)
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "submission not found")
	case errors.Is(err, ErrEmptySlug), errors.Is(err, ErrAlreadyResolved):
		response.BadRequest(c, err.Error())
	case err != nil:
		h.logger.Error("approve failed", zap.Error(err), zap.String("submission_id", id.String()))
		response.Internal(c, "failed to approve submission")
	default:
		response.OK(c, result)
	}
}

// Reject handles POST /submissions/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid submission id")
		return
	}
	var req RejectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	moderator := middleware.CurrentUser(c)

	err = h.service.Reject(c.Request.Context(), id, req.Reason, moderator)
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "submission not found")
	case err != nil:
		h.logger.Error("reject failed", zap.Error(err), zap.String("submission_id", id.String()))
		response.Internal(c, "failed to reject submission")
	default:
		response.OK(c, gin.H{"id": id, "status": models.SubmissionRejected})
	}
}

// ListQueue handles GET /submissions?status=pending (default pending).
func (h *Handler) ListQueue(c *gin.Context) {
	status := models.SubmissionStatus(c.DefaultQuery("status", string(models.SubmissionPending)))
	switch status {
	case models.SubmissionPending, models.SubmissionRejected:
	default:
		response.BadRequest(c, "invalid status filter")
		return
	}
	list, err := h.queue.ListByStatus(c.Request.Context(), status, 100)
	if err != nil {
		h.logger.Error("list submissions failed", zap.Error(err))
		response.Internal(c, "failed to list submissions")
		return
	}
	response.OK(c, gin.H{"submissions": list, "count": len(list)})
}

// GetSubmission handles GET /submissions/:id.
func (h *Handler) GetSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid submission id")
		return
	}
	sub, err := h.queue.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get submission failed", zap.Error(err))
		response.Internal(c, "failed to load submission")
		return
	}
	if sub == nil {
		response.NotFound(c, "submission not found")
		return
	}
	response.OK(c, sub)
}

// ListLog handles GET /moderation/log.
func (h *Handler) ListLog(c *gin.Context) {
	list, err := h.log.ListLog(c.Request.Context(), 100)
	if err != nil {
		h.logger.Error("list moderation log failed", zap.Error(err))
		response.Internal(c, "failed to load moderation log")
		return
	}
	response.OK(c, gin.H{"entries": list, "count": len(list)})
}
