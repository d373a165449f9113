package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhunt-ai/backend/internal/auth"
	"github.com/toolhunt-ai/backend/internal/models"
	"github.com/toolhunt-ai/backend/pkg/response"
)

const cookieName = "session"

func newTestRouter(t *testing.T, allowList []string) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenService("id-secret", "session-secret", 60, 7)
	authz := auth.NewAuthorizer(allowList)

	r := gin.New()
	r.Use(Session(cookieName, tokens, authz))
	r.GET("/whoami", func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			response.OK(c, gin.H{"user": u})
			return
		}
		response.OK(c, gin.H{"user": nil})
	})
	r.GET("/queue", RequireAdmin(), func(c *gin.Context) {
		response.OK(c, gin.H{"queue": []string{}})
	})
	return r, tokens
}

func sessionTokenFor(t *testing.T, tokens *auth.TokenService, email string, admin bool) string {
	t.Helper()
	token, err := tokens.GenerateSessionToken(&models.User{ID: uuid.New(), Email: email, IsAdmin: admin})
	require.NoError(t, err)
	return token
}

func TestRequireAdminWithoutCredential(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminWithNonModeratorSession(t *testing.T) {
	r, tokens := newTestRouter(t, nil)
	token := sessionTokenFor(t, tokens, "visitor@example.com", false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminWithAllowListedEmail(t *testing.T) {
	r, tokens := newTestRouter(t, []string{"mod@example.com"})
	token := sessionTokenFor(t, tokens, "Mod@Example.com", false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminWithAdminClaim(t *testing.T) {
	r, tokens := newTestRouter(t, nil)
	token := sessionTokenFor(t, tokens, "staff@example.com", true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerTokenAccepted(t *testing.T) {
	r, tokens := newTestRouter(t, nil)
	token := sessionTokenFor(t, tokens, "staff@example.com", true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIDTokenNotAcceptedAsSession(t *testing.T) {
	r, tokens := newTestRouter(t, nil)
	idToken, err := tokens.GenerateIDToken(&models.User{ID: uuid.New(), Email: "staff@example.com", IsAdmin: true})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: idToken})
	r.ServeHTTP(w, req)

	// Wrong-kind credential fails verification, request continues
	// unauthenticated and the gate answers 401, not 403.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTamperedTokenFailsClosed(t *testing.T) {
	r, tokens := newTestRouter(t, nil)
	token := sessionTokenFor(t, tokens, "staff@example.com", true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token + "x"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWhoamiUnauthenticated(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":null`)
}
