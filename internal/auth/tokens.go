// Package auth turns bearer tokens and CLI selections into acting identities.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/KrikINS/floor-ready/internal/core/identity"
)

const issuer = "floorready"

// ErrInvalidToken is returned for tokens that are malformed, expired or
// signed with another key.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by an access token. The subject is the
// member ID; the role is informational and re-read from the store on use.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token service.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for m valid for the configured TTL.
func (t *Tokens) Issue(m identity.Member) (string, time.Time, error) {
	if len(t.secret) == 0 {
		return "", time.Time{}, errors.New("no signing secret configured")
	}

	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		Role: string(m.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   m.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies raw and returns the member ID it was issued to.
func (t *Tokens) Parse(raw string) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Issuer != issuer || claims.Subject == "" {
		return "", fmt.Errorf("%w: unexpected issuer or subject", ErrInvalidToken)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(t.now()) {
		return "", fmt.Errorf("%w: expired", ErrInvalidToken)
	}

	return claims.Subject, nil
}
