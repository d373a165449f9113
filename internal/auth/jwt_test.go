package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhunt-ai/backend/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:      uuid.New(),
		Email:   "maker@example.com",
		IsAdmin: true,
		IsPro:   true,
	}
}

func TestIDTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("id-secret", "session-secret", 60, 7)
	u := testUser()

	token, err := svc.GenerateIDToken(u)
	require.NoError(t, err)

	claims, err := svc.ValidateIDToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Email, claims.Email)
	assert.True(t, claims.Admin)
	assert.True(t, claims.Pro)
	assert.Equal(t, KindID, claims.Kind)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("id-secret", "session-secret", 60, 7)
	u := testUser()

	token, err := svc.GenerateSessionToken(u)
	require.NoError(t, err)

	claims, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, KindSession, claims.Kind)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	svc := NewTokenService("id-secret", "session-secret", 60, 7)
	u := testUser()

	idToken, err := svc.GenerateIDToken(u)
	require.NoError(t, err)
	sessionToken, err := svc.GenerateSessionToken(u)
	require.NoError(t, err)

	_, err = svc.ValidateSessionToken(idToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.ValidateIDToken(sessionToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewTokenService("id-secret", "session-secret", -1, 7)
	token, err := svc.GenerateIDToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateIDToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := NewTokenService("id-secret", "session-secret", 60, 7)
	verifier := NewTokenService("id-secret", "other-secret", 60, 7)

	token, err := issuer.GenerateSessionToken(testUser())
	require.NoError(t, err)

	_, err = verifier.ValidateSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewTokenService("id-secret", "session-secret", 60, 7)
	_, err := svc.ValidateSessionToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
