package emaillogs

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/toolhunt-ai/backend/pkg/response"
)

// Handler exposes the notification delivery trail to admins.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListRecent handles GET /emails (admin only).
func (h *Handler) ListRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err))
		response.Internal(c, "failed to list email logs")
		return
	}
	response.OK(c, gin.H{"emails": list, "count": len(list)})
}
