// Package auth keeps the client's session: the bearer token, its
// persisted copy and what the token says about the signed-in user.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles issued by the marketplace backend
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// ErrNoToken is returned when no session token is set
var ErrNoToken = errors.New("auth: no token")

// Claims represents the JWT claims issued by the backend
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Expired reports whether the token expired at now. Tokens without an
// expiry never expire.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// ParseClaims decodes the claims of a token without checking its
// signature. The client cannot verify backend tokens; the backend does.
func ParseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("auth: malformed token: %w", err)
	}
	return claims, nil
}

// TokenIssuer mints HS256 tokens. The CLI and the fake backend used in
// tests share a secret with it; production tokens come from the backend.
type TokenIssuer struct {
	secretKey []byte
	ttl       time.Duration
	issuer    string
}

// NewTokenIssuer creates a token issuer
func NewTokenIssuer(secretKey string, ttl time.Duration, issuer string) *TokenIssuer {
	return &TokenIssuer{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		issuer:    issuer,
	}
}

// Issue generates a signed access token
func (s *TokenIssuer) Issue(userID, email, name, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   userID,
			ID:        uuid.NewString(),
		},
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Verify validates the signature and expiry of a token
func (s *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
