package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/toolhunt-ai/backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Token kinds. ID tokens are short-lived credentials issued at login;
// session tokens back the session cookie and live for days.
const (
	KindID      = "id"
	KindSession = "session"
)

// Claims holds JWT claims for both ID and session tokens.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Admin  bool      `json:"admin"`
	Pro    bool      `json:"pro"`
	Kind   string    `json:"kind"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies ID and session tokens.
type TokenService struct {
	idSecret      []byte
	sessionSecret []byte
	idExpire      time.Duration
	sessionExpire time.Duration
}

// NewTokenService creates a token service. idExpireMinutes bounds ID tokens,
// sessionExpireDays bounds session tokens.
func NewTokenService(idSecret, sessionSecret string, idExpireMinutes, sessionExpireDays int) *TokenService {
	return &TokenService{
		idSecret:      []byte(idSecret),
		sessionSecret: []byte(sessionSecret),
		idExpire:      time.Duration(idExpireMinutes) * time.Minute,
		sessionExpire: time.Duration(sessionExpireDays) * 24 * time.Hour,
	}
}

// SessionTTL returns the session token lifetime.
func (s *TokenService) SessionTTL() time.Duration {
	return s.sessionExpire
}

// GenerateIDToken creates a short-lived ID token for the user.
func (s *TokenService) GenerateIDToken(u *models.User) (string, error) {
	return s.generate(u, KindID, s.idSecret, s.idExpire)
}

// GenerateSessionToken creates a session token for the user.
func (s *TokenService) GenerateSessionToken(u *models.User) (string, error) {
	return s.generate(u, KindSession, s.sessionSecret, s.sessionExpire)
}

func (s *TokenService) generate(u *models.User, kind string, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Admin:  u.IsAdmin,
		Pro:    u.IsPro,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateIDToken parses and validates an ID token.
func (s *TokenService) ValidateIDToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, KindID, s.idSecret)
}

// ValidateSessionToken parses and validates a session token. Any failure
// (expired, malformed, wrong kind, signature mismatch) yields ErrInvalidToken
// without exposing verification internals.
func (s *TokenService) ValidateSessionToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, KindSession, s.sessionSecret)
}

func (s *TokenService) validate(tokenString, kind string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
