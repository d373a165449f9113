package tools

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/toolhunt-ai/backend/internal/models"
	"github.com/toolhunt-ai/backend/pkg/response"
	"github.com/toolhunt-ai/backend/pkg/storage"
)

// CreateRequest is the body for POST /tools (admin direct create).
type CreateRequest struct {
	Name         string   `json:"name" binding:"required,min=2,max=100"`
	Slug         string   `json:"slug"`
	WebsiteURL   string   `json:"website_url" binding:"required,url"`
	AffiliateURL string   `json:"affiliate_url"`
	Tagline      string   `json:"tagline" binding:"required,min=10,max=140"`
	Description  string   `json:"description" binding:"required,min=40,max=2000"`
	Category     string   `json:"category" binding:"required"`
	Pricing      string   `json:"pricing"`
	Tags         []string `json:"tags"`
	Status       string   `json:"status"` // "draft" (default) or "published"
}

// StatusRequest is the body for PATCH /tools/:slug/status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// FlagsRequest is the body for PATCH /tools/:slug/flags. Nil fields are untouched.
type FlagsRequest struct {
	Featured  *bool `json:"featured"`
	Verified  *bool `json:"verified"`
	FreeTrial *bool `json:"free_trial"`
}

// Handler handles tool directory HTTP endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a tools handler. s3 may be nil when logo storage is disabled.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// List handles GET /tools (public; published tools only).
func (h *Handler) List(c *gin.Context) {
	filter := models.ToolFilter{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Query:    c.Query("q"),
	}
	if v := c.Query("featured"); v != "" {
		featured := v == "true" || v == "1"
		filter.Featured = &featured
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list tools failed", zap.Error(err))
		response.Internal(c, "failed to list tools")
		return
	}
	response.OK(c, gin.H{"tools": list, "count": len(list)})
}

// GetBySlug handles GET /tools/:slug (public; 404 unless published).
func (h *Handler) GetBySlug(c *gin.Context) {
	t, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.logger.Error("get tool failed", zap.Error(err))
		response.Internal(c, "failed to load tool")
		return
	}
	if t == nil || t.Status != models.ToolPublished {
		response.NotFound(c, "tool not found")
		return
	}
	response.OK(c, t)
}

// Create handles POST /tools (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	source := req.Slug
	if source == "" {
		source = req.Name
	}
	slug := Slugify(source)
	if slug == "" {
		response.BadRequest(c, "name does not yield a valid slug")
		return
	}

	exists, err := h.repo.ExistsSlug(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("slug check failed", zap.Error(err))
		response.Internal(c, "failed to create tool")
		return
	}
	if exists {
		response.Conflict(c, "a tool with this slug already exists")
		return
	}

	status := models.ToolDraft
	if req.Status == string(models.ToolPublished) {
		status = models.ToolPublished
	}
	t := &models.Tool{
		Slug:         slug,
		Name:         req.Name,
		WebsiteURL:   req.WebsiteURL,
		AffiliateURL: req.AffiliateURL,
		Tagline:      req.Tagline,
		Description:  req.Description,
		Category:     req.Category,
		Pricing:      req.Pricing,
		Tags:         req.Tags,
		Status:       status,
	}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		h.logger.Error("create tool failed", zap.Error(err))
		response.Internal(c, "failed to create tool")
		return
	}
	response.Created(c, t)
}

// UpdateStatus handles PATCH /tools/:slug/status (admin only).
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	status := models.ToolStatus(req.Status)
	switch status {
	case models.ToolDraft, models.ToolPending, models.ToolPublished, models.ToolRejected:
	default:
		response.BadRequest(c, "invalid status")
		return
	}

	n, err := h.repo.UpdateStatus(c.Request.Context(), c.Param("slug"), status)
	if err != nil {
		h.logger.Error("update tool status failed", zap.Error(err))
		response.Internal(c, "failed to update tool")
		return
	}
	if n == 0 {
		response.NotFound(c, "tool not found")
		return
	}
	response.OK(c, gin.H{"slug": c.Param("slug"), "status": status})
}

// UpdateFlags handles PATCH /tools/:slug/flags (admin only).
func (h *Handler) UpdateFlags(c *gin.Context) {
	var req FlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	n, err := h.repo.UpdateFlags(c.Request.Context(), c.Param("slug"), req.Featured, req.Verified, req.FreeTrial)
	if err != nil {
		h.logger.Error("update tool flags failed", zap.Error(err))
		response.Internal(c, "failed to update tool")
		return
	}
	if n == 0 {
		response.NotFound(c, "tool not found")
		return
	}
	response.OK(c, gin.H{"slug": c.Param("slug")})
}

// UploadLogo handles POST /tools/:slug/logo (admin only; multipart file field "logo").
func (h *Handler) UploadLogo(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "logo storage not configured")
		return
	}
	slug := c.Param("slug")
	t, err := h.repo.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("get tool failed", zap.Error(err))
		response.Internal(c, "failed to load tool")
		return
	}
	if t == nil {
		response.NotFound(c, "tool not found")
		return
	}

	file, header, err := c.Request.FormFile("logo")
	if err != nil {
		response.BadRequest(c, "logo file required")
		return
	}
	defer file.Close()
	if header.Size > storage.MaxLogoFileSize {
		response.BadRequest(c, "logo exceeds maximum size")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !storage.ValidateLogoFileType(contentType, header.Filename) {
		response.BadRequest(c, "unsupported logo file type")
		return
	}

	key := storage.LogoKey(slug, header.Filename)
	if _, err := h.s3.UploadLogo(c.Request.Context(), key, contentType, file); err != nil {
		h.logger.Error("logo upload failed", zap.Error(err), zap.String("slug", slug))
		response.Internal(c, "failed to upload logo")
		return
	}
	if _, err := h.repo.SetLogoKey(c.Request.Context(), slug, key); err != nil {
		h.logger.Error("persist logo key failed", zap.Error(err), zap.String("slug", slug))
		response.Internal(c, "failed to save logo")
		return
	}
	response.OK(c, gin.H{"slug": slug, "logo_key": key})
}

// LogoURL handles GET /tools/:slug/logo-url (public; presigned download).
func (h *Handler) LogoURL(c *gin.Context) {
	if h.s3 == nil {
		response.NotFound(c, "logo not available")
		return
	}
	t, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.logger.Error("get tool failed", zap.Error(err))
		response.Internal(c, "failed to load tool")
		return
	}
	if t == nil || t.Status != models.ToolPublished || t.LogoKey == "" {
		response.NotFound(c, "logo not found")
		return
	}
	url, err := h.s3.PresignLogoURL(c.Request.Context(), t.LogoKey)
	if err != nil {
		h.logger.Error("presign logo failed", zap.Error(err))
		response.Internal(c, "failed to generate logo url")
		return
	}
	response.OK(c, gin.H{"url": url})
}
