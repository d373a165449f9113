package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/toolhunt-ai/backend/internal/auth"
	"github.com/toolhunt-ai/backend/internal/models"
	"github.com/toolhunt-ai/backend/pkg/response"
)

const (
	// ContextSessionUser is the key for the resolved session user in gin context.
	ContextSessionUser = "session_user"
)

// ProLookup reads the current subscriber flag for a user. The flag is read
// fresh so a billing webhook takes effect before the session token expires.
type ProLookup interface {
	IsPro(ctx context.Context, id uuid.UUID) (bool, error)
}

// Session resolves the session credential from the session cookie or a
// bearer token and, when valid, stores a SessionUser in the context.
// Verification failures fail closed: the request continues unauthenticated.
func Session(cookieName string, tokens *auth.TokenService, authz *auth.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := ""
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			credential = cookie
		} else if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				credential = parts[1]
			}
		}
		if credential == "" {
			c.Next()
			return
		}

		claims, err := tokens.ValidateSessionToken(credential)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextSessionUser, &models.SessionUser{
			UID:   claims.UserID.String(),
			Email: claims.Email,
			Admin: authz.IsAdmin(claims.Email, claims.Admin),
			Pro:   claims.Pro,
		})
		c.Next()
	}
}

// CurrentUser returns the resolved session user, or nil when unauthenticated.
func CurrentUser(c *gin.Context) *models.SessionUser {
	v, ok := c.Get(ContextSessionUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.SessionUser)
	return u
}

// RequireSession aborts with 401 when no session resolved.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 401 when unauthenticated and 403 when the session
// user is not a moderator. The two-tier split is deliberate: callers report
// different status codes for "not logged in" vs "logged in but not allowed".
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		if !user.Admin {
			response.Forbidden(c, "moderator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePro aborts with 401 when unauthenticated and 403 when the user has
// no active subscription. Moderators pass regardless.
func RequirePro(lookup ProLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		if user.Admin {
			c.Next()
			return
		}
		id, err := uuid.Parse(user.UID)
		if err != nil {
			response.Forbidden(c, "subscription required")
			c.Abort()
			return
		}
		pro, err := lookup.IsPro(c.Request.Context(), id)
		if err != nil {
			response.Internal(c, "failed to check subscription")
			c.Abort()
			return
		}
		if !pro {
			response.Forbidden(c, "subscription required")
			c.Abort()
			return
		}
		c.Next()
	}
}
