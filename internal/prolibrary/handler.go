package prolibrary

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/toolhunt-ai/backend/pkg/response"
)

// Handler serves the subscriber-only content library.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a pro library handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /pro/resources (subscriber gate applied by the router).
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list pro resources failed", zap.Error(err))
		response.Internal(c, "failed to list resources")
		return
	}
	response.OK(c, gin.H{"resources": list, "count": len(list)})
}
