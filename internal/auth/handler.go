package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/toolhunt-ai/backend/internal/models"
	"github.com/toolhunt-ai/backend/pkg/response"
	"github.com/toolhunt-ai/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IDTokenResponse is the auth response carrying a short-lived ID token.
type IDTokenResponse struct {
	IDToken string            `json:"id_token"`
	User    models.UserPublic `json:"user"`
}

// SessionRequest is the body for POST /session.
type SessionRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// CookieSettings controls the session cookie artifact.
type CookieSettings struct {
	Name   string
	Secure bool // true in production
}

// Handler handles identity and session HTTP endpoints.
type Handler struct {
	repo   *Repository
	tokens *TokenService
	cookie CookieSettings
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, tokens *TokenService, cookie CookieSettings, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, tokens: tokens, cookie: cookie, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	existing, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("lookup user failed", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}
	if existing != nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName)
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}

	token, err := h.tokens.GenerateIDToken(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.Created(c, IDTokenResponse{IDToken: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("lookup user failed", zap.Error(err))
		response.Internal(c, "login failed")
		return
	}
	if user == nil || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.tokens.GenerateIDToken(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, IDTokenResponse{IDToken: token, User: user.ToPublic()})
}

// CreateSession handles POST /session: exchanges a valid ID token for a
// session cookie. The user record is re-read so the admin and subscriber
// flags in the session reflect out-of-band changes.
func (h *Handler) CreateSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	claims, err := h.tokens.ValidateIDToken(req.IDToken)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("lookup user failed", zap.Error(err))
		response.Internal(c, "failed to create session")
		return
	}
	if user == nil {
		response.Unauthorized(c, "account no longer exists")
		return
	}

	sessionToken, err := h.tokens.GenerateSessionToken(user)
	if err != nil {
		response.Internal(c, "failed to create session")
		return
	}

	maxAge := int(h.tokens.SessionTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sessionToken, maxAge, "/", "", h.cookie.Secure, true)
	response.OK(c, gin.H{"token": sessionToken, "user": user.ToPublic()})
}

// DestroySession handles DELETE /session: clears the session cookie.
func (h *Handler) DestroySession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	response.OK(c, gin.H{"signed_out": true})
}
