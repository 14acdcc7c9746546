package services

import (
	"github.com/golang-jwt/jwt/v5"
	"go-places/utils/errors"
	"net/http"
	"time"
)

const DefaultSessionTTL = 24 * time.Hour

// TokenService signs bearer tokens that bind a client to its session.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService signs with secret. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// TTL is how long issued tokens, and the sessions they open, stay valid.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs an HS256 token carrying the session id.
func (s *TokenService) Issue(sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sessionID": sessionID,
		"exp":       time.Now().Add(s.ttl).Unix(),
	})
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}
	return tokenString, nil
}
