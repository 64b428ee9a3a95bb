// Package auth implements session token verification and the access control
// gate handlers call before touching any store.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rhymove/enrollment-backend/internal/model"
)

// Identity is the verified subject extracted from a session token.
type Identity struct {
	Email string
	Name  string
}

type sessionClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies session tokens with a server-held HMAC
// secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager. ttl bounds token validity.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a session token for the given identity.
func (m *TokenManager) Issue(identity Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Name: identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(identity.Email),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates signature and expiry and returns the embedded identity.
// Every failure mode collapses to ErrUnauthenticated: callers must reject the
// request without touching any store.
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", model.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", model.ErrUnauthenticated)
	}
	return Identity{Email: claims.Subject, Name: claims.Name}, nil
}

// BearerToken extracts the raw token from an Authorization: Bearer header.
func BearerToken(r *http.Request) (string, error) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", model.ErrUnauthenticated)
	}
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("%w: malformed authorization header", model.ErrUnauthenticated)
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", fmt.Errorf("%w: empty bearer token", model.ErrUnauthenticated)
	}
	return token, nil
}
